package assets

// Built-in asset names.
const (
	StyleCapture  = "capture"
	StylePrint    = "print"
	StyleDocument = "document"

	ScriptTypeset    = "typeset"
	ScriptFonts      = "fonts"
	ScriptClone      = "clone"
	ScriptRemove     = "remove"
	ScriptMeasure    = "measure"
	ScriptMargins    = "margins"
	ScriptUnits      = "units"
	ScriptVisibility = "visibility"
	ScriptRect       = "rect"
	ScriptStyle      = "style"

	TemplateDocument = "document"
	TemplateRemote   = "remote"
)

// Scripts lists every script the browser layer needs.
var Scripts = []string{
	ScriptTypeset,
	ScriptFonts,
	ScriptClone,
	ScriptRemove,
	ScriptMeasure,
	ScriptMargins,
	ScriptUnits,
	ScriptVisibility,
	ScriptRect,
	ScriptStyle,
}

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadScript loads a script by name using the default embedded loader.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}

// LoadTemplate loads an HTML template by name using the default embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// LoadScripts loads every name through loader, keyed by name.
func LoadScripts(loader AssetLoader, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		src, err := loader.LoadScript(name)
		if err != nil {
			return nil, err
		}
		out[name] = src
	}
	return out, nil
}
