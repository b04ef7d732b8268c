// Package prof drives the Go runtime profilers for one CLI invocation.
package prof

import (
	"errors"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// ErrActive is returned when a profiler of the same kind is already running.
var ErrActive = errors.New("prof: already active")

// Profiler owns the output files of the CPU profile and the runtime trace.
// The zero value is ready to use.
type Profiler struct {
	cpu   *os.File
	trace *os.File
}

// StartCPU begins CPU sampling into path.
func (p *Profiler) StartCPU(path string) error {
	if p.cpu != nil {
		return ErrActive
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	p.cpu = f
	return nil
}

// StopCPU ends sampling and closes the file; a no-op when inactive.
func (p *Profiler) StopCPU() error {
	if p.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := p.cpu.Close()
	p.cpu = nil
	return err
}

// StartTrace begins a runtime trace into path.
func (p *Profiler) StartTrace(path string) error {
	if p.trace != nil {
		return ErrActive
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return err
	}
	p.trace = f
	return nil
}

// StopTrace ends the runtime trace; a no-op when inactive.
func (p *Profiler) StopTrace() error {
	if p.trace == nil {
		return nil
	}
	trace.Stop()
	err := p.trace.Close()
	p.trace = nil
	return err
}

// WriteMem writes a heap profile to path after a forced GC.
func WriteMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
