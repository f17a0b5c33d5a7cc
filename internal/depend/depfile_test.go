package depend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseRule(t *testing.T) {
	for _, tc := range []struct {
		name string
		out  []byte
		want []string
	}{
		{
			name: "simple",
			out:  []byte("a.o: a.cpp a.h /usr/include/stdio.h\n"),
			want: []string{"a.cpp", "a.h", "/usr/include/stdio.h"},
		},
		{
			name: "continuation lines",
			out:  []byte("a.o: a.cpp \\\n  include/a.h \\\r\n  b.h\n"),
			want: []string{"a.cpp", "include/a.h", "b.h"},
		},
		{
			name: "escaped space",
			out:  []byte(`a.o: my\ file.cpp other.h`),
			want: []string{"my file.cpp", "other.h"},
		},
		{
			name: "line marker skipped",
			out:  []byte("# 1 \"/home/me/proj/helper.lib//\"\na.o: a.cpp a.h\n"),
			want: []string{"a.cpp", "a.h"},
		},
		{
			name: "drive letter in target",
			out:  []byte(`C:\obj\a.o: C:\src\a.cpp C:\src\a.h`),
			want: []string{`C:\src\a.cpp`, `C:\src\a.h`},
		},
		{
			name: "phony rules ignored",
			out:  []byte("a.o: a.cpp a.h\n\na.h:\n"),
			want: []string{"a.cpp", "a.h"},
		},
		{
			name: "no rule",
			out:  []byte("nothing useful\n"),
			want: nil,
		},
		{
			name: "empty",
			out:  nil,
			want: nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRule(tc.out)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseRule(%q) -want +got:\n%s", tc.out, diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "./a.h", Normalize("a.h"))
	assert.Equal(t, "./a.h", Normalize("./a.h"))
	assert.Equal(t, "include/a.h", Normalize("include/a.h"))
	assert.Equal(t, "/usr/include/stdio.h", Normalize("/usr/include/stdio.h"))
	assert.Equal(t, `sub\a.h`, Normalize(`sub\a.h`))
}

func TestNormalizeAll(t *testing.T) {
	got := normalizeAll("a.cpp", []string{"a.cpp", "a.h", "./a.h", "sub/b.h"})
	if diff := cmp.Diff([]string{"./a.cpp", "./a.h", "sub/b.h"}, got); diff != "" {
		t.Errorf("normalizeAll -want +got:\n%s", diff)
	}

	// the file itself is always a dependency
	got = normalizeAll("src/a.cpp", []string{"a.h"})
	if diff := cmp.Diff([]string{"src/a.cpp", "./a.h"}, got); diff != "" {
		t.Errorf("normalizeAll -want +got:\n%s", diff)
	}
}
