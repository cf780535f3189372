package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// StdoutPath is the destination argument that aliases standard output.
const StdoutPath = "-"

const createMode = 0o666

// FileSink writes chunks to a file opened on a billy filesystem.
type FileSink struct {
	file billy.File
	path string
}

// Write outputs one chunk.
func (s *FileSink) Write(p []byte) (int, error) {
	return writeFull(s.file, p)
}

// Close closes the file.
func (s *FileSink) Close() error {
	return s.file.Close()
}

// Name returns the sink identifier.
func (s *FileSink) Name() string {
	return "file:" + s.path
}

// HostFS is a billy.Filesystem over the native filesystem. Relative paths
// resolve against the working directory, as they would for open(2).
type HostFS struct {
	osfs.ChrootOS
}

// NewHostFS returns the native filesystem.
func NewHostFS() *HostFS {
	return &HostFS{}
}

// Chroot returns a new filesystem rooted at the provided path.
//
//nolint:ireturn // signature is dictated by billy.Filesystem.
func (h *HostFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the directory relative paths resolve against, the
// process working directory.
func (h *HostFS) Root() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// OpenError reports a destination that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Category names the failure class shown to the user.
func (e *OpenError) Category() string {
	switch {
	case errors.Is(e.Err, fs.ErrPermission):
		return "PermissionError"
	case errors.Is(e.Err, fs.ErrNotExist):
		return "NotFoundError"
	default:
		return "IOError"
	}
}

// Opener turns destination arguments into sinks.
type Opener struct {
	fs         billy.Filesystem
	stdout     *StdoutSink
	appendMode bool
}

// NewOpener creates an opener on fsys. Destinations equal to StdoutPath
// resolve to stdout. If fsys is nil, the host filesystem is used.
func NewOpener(fsys billy.Filesystem, stdout *StdoutSink, appendMode bool) *Opener {
	if fsys == nil {
		fsys = NewHostFS()
	}
	return &Opener{fs: fsys, stdout: stdout, appendMode: appendMode}
}

// Open returns the sink for one destination argument. Files are opened
// write-only, created if missing, and either appended to or truncated.
// No lock is taken, so other processes may use the file concurrently.
func (o *Opener) Open(path string) (Sink, error) {
	if path == StdoutPath {
		return o.stdout, nil
	}

	// billy creates missing parent directories on O_CREATE; a plain
	// open(2) does not, and neither do we.
	if dir := filepath.Dir(path); dir != "." {
		info, err := o.fs.Stat(dir)
		if err != nil {
			return nil, &OpenError{Path: path, Err: err}
		}
		if !info.IsDir() {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("%s: not a directory", dir)}
		}
	}

	flag := os.O_WRONLY | os.O_CREATE
	if o.appendMode {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	f, err := o.fs.OpenFile(path, flag, createMode)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &FileSink{file: f, path: path}, nil
}

// OpenAll opens every destination in order, one sink per argument. If any
// open fails, the files already opened are closed and the error returned.
func (o *Opener) OpenAll(paths []string) ([]Sink, error) {
	sinks := make([]Sink, 0, len(paths))
	for _, p := range paths {
		s, err := o.Open(p)
		if err != nil {
			for _, opened := range sinks {
				if opened != o.stdout {
					_ = opened.Close()
				}
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
