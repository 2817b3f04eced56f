package blocks

// Stylesheet is the CSS served alongside rendered previews.
const Stylesheet = `
.docblock-preview {
	position: relative;
	overflow: hidden;
	margin: 25px 0 40px;
	background: #fff;
	border: 1px solid rgba(0, 0, 0, 0.1);
	border-radius: 4px;
	box-shadow: rgba(0, 0, 0, 0.1) 0 1px 3px 0;
}
.docblock-preview--toolbar { padding-top: 40px; }
.docblock-preview--expanded {
	border-bottom-left-radius: 0;
	border-bottom-right-radius: 0;
	border-bottom-width: 0;
}
.docblock-toolbar {
	position: absolute;
	top: 0;
	left: 0;
	right: 0;
	height: 40px;
	display: flex;
	justify-content: space-between;
	align-items: center;
	padding: 0 10px;
}
.docblock-toolbar--border { border-bottom: 1px solid rgba(0, 0, 0, 0.1); }
.docblock-toolbar-button, .docblock-canvas-link {
	background: none;
	border: 0;
	cursor: pointer;
	font-size: 16px;
	padding: 4px 8px;
	color: #333;
	text-decoration: none;
}
.docblock-relative { overflow: hidden; position: relative; }
.docblock-children {
	position: relative;
	flex-wrap: wrap;
	padding: 30px 20px;
	overflow: auto;
	margin: -10px;
}
.docblock-children > .docblock-story { border: 10px solid transparent !important; }
.docblock-actionbar {
	position: absolute;
	bottom: 0;
	right: 0;
	display: flex;
}
.docblock-action {
	border: 0;
	border-top: 1px solid rgba(0, 0, 0, 0.1);
	border-left: 1px solid rgba(0, 0, 0, 0.1);
	background: #fff;
	padding: 4px 10px;
	font-size: 12px;
	font-weight: bold;
	cursor: pointer;
}
.docblock-action[disabled] { cursor: not-allowed; opacity: 0.5; }
.docblock-source { margin: 0; font-family: Menlo, Monaco, monospace; font-size: 13px; }
.docblock-source pre { margin: 0; padding: 20px; overflow: auto; }
.docblock-source--dark {
	background: rgba(0, 0, 0, 0.85);
	color: #fff;
	border-bottom-left-radius: 4px;
	border-bottom-right-radius: 4px;
}
`
