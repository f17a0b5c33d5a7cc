package library

// Builtin returns the libraries known out of the box for goos, and the
// hand-curated precedence pairs. The pairs record ordering facts the
// dependency lists cannot express, such as where the OS X frameworks must
// sit relative to SDL for the single pass static linker.
func Builtin(goos string) ([]Library, []Pair) {
	darwin := goos == "darwin"

	// On OS X the GL family are frameworks; elsewhere G3D needs X11 and SDL
	glKind := Dynamic
	g3dExtra := []string{"X11"}
	glg3dExtra := []string{"SDL"}
	if darwin {
		glKind = Framework
		g3dExtra = nil
		glg3dExtra = []string{"AppleGL"}
	}

	libs := []Library{
		{Name: "SDL", Kind: glKind, ReleaseLib: "SDL", DebugLib: "SDL", ReleaseFramework: "SDL", DebugFramework: "SDL", Headers: []string{"SDL.h"}, Symbols: []string{"SDL_GetMouseState"}, DependsOn: []string{"OpenGL", "pthread"}, Deploy: true},
		{Name: "curses", Kind: Dynamic, ReleaseLib: "curses", DebugLib: "curses", Headers: []string{"curses.h"}},
		{Name: "zlib", Kind: Dynamic, ReleaseLib: "z", DebugLib: "z", Headers: []string{"zlib.h"}, Symbols: []string{"compress2"}},
		{Name: "zip", Kind: Static, ReleaseLib: "zip", DebugLib: "zip", Headers: []string{"zip.h"}, Symbols: []string{"unzClose"}, DependsOn: []string{"zlib"}},
		{Name: "glut", Kind: glKind, ReleaseLib: "glut", DebugLib: "glut", ReleaseFramework: "GLUT", DebugFramework: "GLUT", Headers: []string{"glut.h"}},
		{Name: "OpenGL", Kind: glKind, ReleaseLib: "GL", DebugLib: "GL", ReleaseFramework: "OpenGL", DebugFramework: "OpenGL", Headers: []string{"gl.h"}, Symbols: []string{"glBegin", "glVertex3"}},
		{Name: "jpeg", Kind: Dynamic, ReleaseLib: "jpeg", DebugLib: "jpeg", Headers: []string{"jpeg.h"}, Symbols: []string{"jpeg_memory_src", "jpeg_CreateCompress"}},
		{Name: "png", Kind: Dynamic, ReleaseLib: "png", DebugLib: "png", Headers: []string{"png.h"}, Symbols: []string{"png_create_info_struct"}},
		{Name: "GLU", Kind: glKind, ReleaseLib: "GLU", DebugLib: "GLU", Headers: []string{"glu.h"}, Symbols: []string{"gluBuild2DMipmaps"}, DependsOn: []string{"OpenGL"}},
		{Name: "Cocoa", Kind: Framework, ReleaseFramework: "Cocoa", DebugFramework: "Cocoa", Headers: []string{"Cocoa.h"}, Symbols: []string{"DebugStr"}},
		{Name: "Carbon", Kind: Framework, ReleaseFramework: "Carbon", DebugFramework: "Carbon", Headers: []string{"Carbon.h"}, Symbols: []string{"ShowWindow"}},
		{Name: "AppleGL", Kind: Framework, ReleaseFramework: "AGL", DebugFramework: "AGL", Headers: []string{"agl.h"}, Symbols: []string{"_aglChoosePixelFormat"}},
		{Name: "G3D", Kind: Static, ReleaseLib: "G3D", DebugLib: "G3Dd", Headers: []string{"G3D.h"}, DependsOn: append([]string{"zlib", "jpeg", "png", "zip", "Cocoa", "pthread", "Carbon"}, g3dExtra...)},
		{Name: "GLG3D", Kind: Static, ReleaseLib: "GLG3D", DebugLib: "GLG3Dd", Headers: []string{"GLG3D.h", "RenderDevice.h"}, DependsOn: append([]string{"G3D", "OpenGL", "GLU", "FFMPEG-util", "FFMPEG-codec", "FFMPEG-format"}, glg3dExtra...)},
		{Name: "pthread", Kind: Dynamic, ReleaseLib: "pthread", DebugLib: "pthread", Headers: []string{"pthread.h"}},
		{Name: "QT", Kind: Dynamic, ReleaseLib: "qt-mt", DebugLib: "qt-mt", Headers: []string{"qobject.h"}},
		{Name: "IOKit", Kind: Framework, ReleaseFramework: "IOKit", DebugFramework: "IOKit", Headers: []string{"IOHIDKeys.h", "IOKitLib.h", "IOHIDLib.h"}, Symbols: []string{"IOMasterPort"}},
		{Name: "X11", Kind: Dynamic, ReleaseLib: "X11", DebugLib: "X11", Headers: []string{"x11.h"}, Symbols: []string{"XSync", "XFlush"}},
		{Name: "ANN", Kind: Static, ReleaseLib: "ANN", DebugLib: "ANN", Headers: []string{"ANN.h"}},
		{Name: "FFMPEG-util", Kind: Static, ReleaseLib: "avutil", DebugLib: "avutil"},
		{Name: "FFMPEG-codec", Kind: Static, ReleaseLib: "avcodec", DebugLib: "avcodec"},
		{Name: "FFMPEG-format", Kind: Static, ReleaseLib: "avformat", DebugLib: "avformat"},
		{Name: "FMOD", Kind: Dynamic, ReleaseLib: "fmodex", DebugLib: "fmodex", Headers: []string{"fmod.hpp", "fmod.h"}},
	}

	pairs := []Pair{
		{"GLG3D", "G3D"},
		{"G3D", "Cocoa"},
		{"Cocoa", "SDL"},
		{"SDL", "OpenGL"},
		{"GLU", "OpenGL"},
		{"GLG3D", "GLU"},
		{"G3D", "zlib"},
		{"G3D", "zip"},
		{"G3D", "png"},
		{"G3D", "jpeg"},
		{"Cocoa", "pthread"},
		{"Cocoa", "zlib"},
		{"OpenGL", "png"},
		{"OpenGL", "jpeg"},
		{"OpenGL", "pthread"},
		{"Cocoa", "Carbon"},
		{"FFMPEG-format", "FFMPEG-codec"},
		{"FFMPEG-codec", "FFMPEG-util"},
		{"FFMPEG-format", "zlib"},
		{"GLG3D", "FFMPEG-format"},
	}

	return libs, pairs
}

// NewBuiltin builds the registry of builtin libraries for goos
func NewBuiltin(goos string) (*Registry, error) {
	return NewRegistry(Builtin(goos))
}
