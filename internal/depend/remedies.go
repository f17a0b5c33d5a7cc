package depend

// Remedy is a known fix for a missing header: tools that print the
// compiler and linker flags the header needs
type Remedy struct {
	// Base name of the missing header
	Header string

	// What was detected, for the log
	Name string

	// Commands whose whitespace separated output is appended to the
	// compiler and linker options. Either may be empty.
	CompileFlags []string
	LinkFlags    []string
}

// DefaultRemedies are the toolkits recognized out of the box
var DefaultRemedies = []Remedy{
	{
		Header:       "wx.h",
		Name:         "wxWidgets",
		CompileFlags: []string{"wx-config", "--cxxflags"},
		LinkFlags:    []string{"wx-config", "--gl-libs", "--libs"},
	},
	{
		Header:       "gtk.h",
		Name:         "GTK",
		CompileFlags: []string{"pkg-config", "--cflags", "gtk+-3.0"},
		LinkFlags:    []string{"pkg-config", "--libs", "gtk+-3.0"},
	},
}
