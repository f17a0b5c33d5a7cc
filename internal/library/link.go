package library

import "github.com/Norgate-AV/ice/internal/utils"

// LinkFlags returns linker arguments for names, which must already be in
// link order. On darwin a library with a framework is linked as one;
// elsewhere framework-only libraries are skipped. Unknown names are passed
// through as -l<name>.
func (c *Catalog) LinkFlags(names []string, target utils.Target, goos string) []string {
	var flags []string

	for _, name := range names {
		lib, ok := c.Lookup(name)
		if !ok {
			flags = append(flags, "-l"+name)
			continue
		}

		lib.appendFlags(&flags, target, goos)
	}

	return flags
}

func (lib Library) appendFlags(flags *[]string, target utils.Target, goos string) {
	framework, file := lib.ReleaseFramework, lib.ReleaseLib
	if target == utils.Debug {
		framework, file = lib.DebugFramework, lib.DebugLib
	}

	if goos == "darwin" && framework != "" {
		*flags = append(*flags, "-framework", framework)
		return
	}

	if lib.Kind == Framework || file == "" {
		return
	}

	*flags = append(*flags, "-l"+file)
}
