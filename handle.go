/*
 * handle.go, part of msms-wrapper.
 *
 * Copyright 2026 The msms-wrapper authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
//In order to use this part of the library you need the msms program by Michel Sanner,
//which must be obtained independently. Please cite the msms reference if you use it.

package msms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	defCommand = "msms"
	defName    = "msms"
	//how long to wait for the output pipes to close after msms is killed.
	waitDelay = 2 * time.Second
)

// Handle runs msms. A Handle holds no state from one run to the next, so
// it can be used for several runs, also concurrently.
type Handle struct {
	command string
	name    string
	tmpdir  string
	verbose bool
}

// NewHandle returns a Handle with the default settings.
func NewHandle() *Handle {
	H := new(Handle)
	H.SetDefaults()
	return H
}

// SetDefaults sets the default values. The command is taken from the MSMS_COMMAND
// environment variable or, if it is not defined, is just "msms", which
// will be looked for in the PATH.
func (H *Handle) SetDefaults() {
	H.command = os.Getenv("MSMS_COMMAND")
	if H.command == "" {
		H.command = defCommand
	}
	H.name = defName
	H.tmpdir = ""
	H.verbose = false
}

// Command returns the msms command used by the Handle.
func (H *Handle) Command() string {
	return H.command
}

// SetCommand sets the path and name of the msms executable.
func (H *Handle) SetCommand(name string) {
	H.command = name
}

// SetName sets the base name for archived output files.
func (H *Handle) SetName(name string) {
	H.name = name
}

// SetTempDir sets the directory where the per-run temporary directories
// are created. The default is the system's temporary directory.
func (H *Handle) SetTempDir(dir string) {
	H.tmpdir = dir
}

// SetVerbose sets whether each msms command line is logged before running.
func (H *Handle) SetVerbose(v bool) {
	H.verbose = v
}

// Available returns true if the msms program can be found. It never fails.
func Available() bool {
	return NewHandle().Available()
}

// Available returns true if the Handle's command can be found, either
// as a path or in the directories in PATH. It never fails.
func (H *Handle) Available() bool {
	if H.command == "" {
		return false
	}
	_, err := exec.LookPath(H.command)
	return err == nil
}

// HelpText runs msms in help mode and returns its output verbatim.
// msms exits with an error status after printing the help, so that status is
// ignored as long as some text was printed.
func (H *Handle) HelpText(ctx context.Context) (string, error) {
	out, err := H.invoke(ctx, "", []string{"-h"})
	if err != nil {
		var e *Error
		if errors.As(err, &e) && errors.Is(err, ErrExecutionFailed) && strings.TrimSpace(e.Output()) != "" {
			return e.Output(), nil
		}
		return "", errDecorate(err, "HelpText")
	}
	return out, nil
}

// Invoke runs msms with the arguments args and returns its combined standard
// output and error. It does not retry. See Run for the errors returned.
func (H *Handle) Invoke(ctx context.Context, args []string) (string, error) {
	out, err := H.invoke(ctx, "", args)
	return out, errDecorate(err, "Invoke")
}

func (H *Handle) invoke(ctx context.Context, dir string, args []string) (string, error) {
	errid := "invoke"
	path, err := exec.LookPath(H.command)
	if err != nil {
		e := newError(ErrNotAvailable, fmt.Sprintf("can't find %q", H.command), errid)
		e.cause = err
		return "", e
	}
	if H.verbose {
		log.Printf("%s %s", path, strings.Join(args, " "))
	}
	command := exec.CommandContext(ctx, path, args...)
	command.Dir = dir
	command.WaitDelay = waitDelay
	killGroup(command)
	outb, err := command.CombinedOutput()
	out := string(outb)
	if err == nil {
		return out, nil
	}
	if ctxerr := ctx.Err(); ctxerr != nil {
		kind := ErrExecutionFailed
		if errors.Is(ctxerr, context.DeadlineExceeded) {
			kind = ErrTimedOut
		}
		e := newError(kind, "msms was stopped", errid)
		e.status = -1
		e.output = out
		e.cause = ctxerr
		return out, e
	}
	var exiterr *exec.ExitError
	if errors.As(err, &exiterr) {
		e := newError(ErrExecutionFailed, "", errid)
		e.status = exiterr.ExitCode()
		e.output = out
		return out, e
	}
	kind := ErrExecutionFailed
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, exec.ErrNotFound) {
		//the program went away between the lookup and the run.
		kind = ErrNotAvailable
	}
	e := newError(kind, "can't start msms", errid)
	e.status = -1
	e.output = out
	e.cause = err
	return out, e
}

// Run computes the surface for the atoms A with msms, using the options O
// (DefaultOptions() if O is nil). All files are created in a new temporary
// directory, which is removed before Run returns.
// Errors are of kind ErrInvalidInput (bad atoms or options), ErrNotAvailable (msms not found),
// ErrExecutionFailed (msms exited with an error; the error carries its exit status and output),
// ErrTimedOut (msms took longer than O.Timeout() or the ctx deadline) or
// ErrMalformedOutput (the output files are incomplete or inconsistent).
func (H *Handle) Run(ctx context.Context, A *AtomSet, O *Options) (S *Surface, err error) {
	errid := "Handle/Run"
	if O == nil {
		O = DefaultOptions()
	}
	if err = A.Check(); err != nil {
		return nil, errDecorate(err, errid)
	}
	dir, err := os.MkdirTemp(H.tmpdir, "msms-")
	if err != nil {
		return nil, fmt.Errorf("%s: can't create temporary directory: %w", errid, err)
	}
	defer func() {
		if err2 := os.RemoveAll(dir); err2 != nil {
			log.Printf("msms: can't remove temporary directory %s: %v", dir, err2)
		}
	}()
	input, err := WriteXYZR(dir, A)
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	prefix := filepath.Join(dir, "surface")
	args, err := O.Args(input, prefix)
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	if t := O.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	out, err := H.invoke(ctx, dir, args)
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	if O.Archive() != "" {
		if err := H.archive(O.Archive(), prefix); err != nil {
			log.Printf("msms: couldn't archive the output files: %v", err)
		}
	}
	set := renderedArgs(args)
	S, err = ParseFiles(prefix+".vert", prefix+".face", set.surface)
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	S.Log = splitLines(out)
	var comps []ComponentArea
	S.Params, comps = ParseLog(out)
	S.Analytical = newAnalytical(S.VertHeader, comps, set.allComponents)
	S.Analytical.NoArea = set.noArea
	if O.AreaFile() {
		S.AtomAreas, err = ReadAreaFile(prefix + ".area")
		if err != nil {
			return nil, errDecorate(err, errid)
		}
	}
	return S, nil
}

// Run computes the surface for A with a default Handle.
func Run(ctx context.Context, A *AtomSet, O *Options) (*Surface, error) {
	return NewHandle().Run(ctx, A, O)
}

// Scan runs msms once per density in densities, with the other options taken from O,
// and returns the descriptors obtained in each run, in the same order.
func (H *Handle) Scan(ctx context.Context, A *AtomSet, O *Options, densities []float64) ([]ScanPoint, error) {
	if O == nil {
		O = DefaultOptions()
	}
	ret := make([]ScanPoint, 0, len(densities))
	for _, d := range densities {
		o := O.Copy()
		o.Density(d)
		S, err := H.Run(ctx, A, o)
		if err != nil {
			return ret, errDecorate(err, fmt.Sprintf("Scan: density %g", d))
		}
		D, err := Extract(S)
		if err != nil {
			return ret, errDecorate(err, fmt.Sprintf("Scan: density %g", d))
		}
		ret = append(ret, ScanPoint{Density: d, Vertices: len(S.Vertices), Faces: len(S.Faces), Descriptors: D})
	}
	return ret, nil
}

// archive writes zstd-compressed copies of the output files with the given prefix
// to the directory dir, named after the Handle. Existing files are overwritten.
func (H *Handle) archive(dir, prefix string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, ext := range []string{".vert", ".face", ".area"} {
		src := prefix + ext
		if _, err := os.Stat(src); err != nil {
			if ext == ".area" {
				continue //only there if requested
			}
			return err
		}
		if err := compressFile(src, filepath.Join(dir, H.name+ext+".zst")); err != nil {
			return err
		}
	}
	return nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	zw, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if _, err = io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}
	return out.Close()
}
