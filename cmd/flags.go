package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by --format.
var outputFormats = []string{"table", "json", "yaml"}

// StandardFlags holds the flags shared across commands.
type StandardFlags struct {
	Port    int
	Host    string
	NoWatch bool

	Format string
	Output string
}

// AddStandardFlags registers the named flag groups on cmd.
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "format":
			cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format ("+strings.Join(outputFormats, "|")+")")
		case "output":
			cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write to file instead of stdout")
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 6006, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	cmd.Flags().BoolVar(&flags.NoWatch, "no-watch", false, "Don't reload when the manifest changes")
	AddFlagValidation(cmd, "port", ValidatePort)
}

// ValidateFlags checks flag values that pflag cannot.
func (f *StandardFlags) ValidateFlags() error {
	if f.Format == "" {
		return nil
	}
	for _, format := range outputFormats {
		if f.Format == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %s, must be one of: %s", f.Format, strings.Join(outputFormats, ", "))
}

// bindFlags binds flags to viper keys, flag name to key.
func bindFlags(fs *pflag.FlagSet, bindings map[string]string) {
	for flagName, key := range bindings {
		if flag := fs.Lookup(flagName); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// AddFlagValidation makes flagName reject values validator refuses at parse
// time.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if err := v.validator(val); err != nil {
		return err
	}
	return v.Value.Set(val)
}

// ValidatePort accepts 1-65535.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
