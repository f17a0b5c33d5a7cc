package depend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const wxOutput = `In file included from main.cpp:1:
/usr/include/app/gui.h:4:10: fatal error: wx/wx.h: No such file or directory
    4 | #include <wx/wx.h>
      |          ^~~~~~~~~
compilation terminated.
`

func TestIsInclusionError(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"included from", wxOutput, true},
		{"leading whitespace", "\n  In file included from a.cpp:2:\n", true},
		{"direct include", "a.cpp:1:10: fatal error: gtk.h: No such file or directory\r\n", true},
		{"other failure", "g++: error: unrecognized command-line option '-Mfoo'\n", false},
		{"source missing", "cc1plus: fatal error: a.cpp: No such file or directory\ncompilation terminated.\n", false},
		{"source missing with directory", "cc1plus: fatal error: src/a.cpp: No such file or directory\n", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInclusionError(tt.output, "./a.cpp"))
		})
	}
}

func TestMissingHeaders(t *testing.T) {
	assert.Equal(t, []string{"wx.h"}, MissingHeaders(wxOutput, "./main.cpp"))

	output := "a.cpp:1:10: fatal error: gtk/gtk.h: No such file or directory\n" +
		"b.cpp:1:10: fatal error: gtk/gtk.h: No such file or directory\n" +
		"/opt/missing: No such file or directory\n"
	assert.Equal(t, []string{"gtk.h", "missing"}, MissingHeaders(output, "./a.cpp"))

	assert.Empty(t, MissingHeaders("In file included from a.cpp:1:\n", "./a.cpp"))
}

func TestMissingHeaders_SkipsExtractedFile(t *testing.T) {
	output := "In file included from a.cpp:1:\n" +
		"cc1plus: fatal error: ./a.cpp: No such file or directory\n" +
		"a.h:2:10: fatal error: foo.h: No such file or directory\n"

	assert.Equal(t, []string{"foo.h"}, MissingHeaders(output, "a.cpp"))
}
