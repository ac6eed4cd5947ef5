// Copyright 2014 Rob Pike. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the small bag of global settings shared by the
// lexer, parser and VM: the numeric bases, the interrupt flag, debug
// switches and the POSIX-strict mode. A *Config is threaded by pointer
// through every component, the same way robpike.io/ivy threads its
// *config.Config into the scanner and parser.
package config

import (
	"sync/atomic"

	"github.com/blinksh/bc/internal/bcerr"
)

// Numeric limits reported by the `limits` pseudo-command (spec §6).
const (
	BaseMax   = 16          // BC_BASE_MAX: input base ceiling; output base has no ceiling here.
	DimMax    = 1 << 20     // BC_DIM_MAX: largest array index we will grow to.
	ScaleMax  = 1<<31 - 1   // BC_SCALE_MAX
	StringMax = 1<<31 - 1   // BC_STRING_MAX
	NumLenMax = 1 << 20     // implementation bound on a single number's digit count.
	LineLen   = 70          // default terminal width numeric output wraps at.
)

// The zero value of Config is ready to use and holds every default: ibase
// and obase 10, scale 0, not POSIX-strict, nothing traced.
type Config struct {
	ibase int32 // atomic; read by every opcode, so kept lock-free.
	obase int32
	scale int32

	posixStrict bool
	debug       map[string]bool

	interrupted int32 // atomic; set by the host's signal handler, cleared by the REPL.
}

func (c *Config) Ibase() int {
	if c == nil || c.ibase == 0 {
		return 10
	}
	return int(atomic.LoadInt32(&c.ibase))
}

// SetIbase clamps v to [2,16] (spec §4.D: "Assigning to ibase clamps to
// [2,16]") rather than failing on an out-of-range value.
func (c *Config) SetIbase(v int) {
	if v < 2 {
		v = 2
	} else if v > BaseMax {
		v = BaseMax
	}
	atomic.StoreInt32(&c.ibase, int32(v))
}

func (c *Config) Obase() int {
	if c == nil || c.obase == 0 {
		return 10
	}
	return int(atomic.LoadInt32(&c.obase))
}

// SetObase requires v >= 2 (spec §4.D), returning an exec error otherwise
// rather than clamping: unlike ibase, an out-of-range obase assignment
// fails.
func (c *Config) SetObase(v int) *bcerr.Error {
	if v < 2 {
		return bcerr.New(bcerr.Exec, "bad-obase")
	}
	atomic.StoreInt32(&c.obase, int32(v))
	return nil
}

func (c *Config) Scale() int {
	if c == nil {
		return 0
	}
	return int(atomic.LoadInt32(&c.scale))
}

// SetScale requires v >= 0 (spec §4.D), returning an exec error on a
// negative assignment.
func (c *Config) SetScale(v int) *bcerr.Error {
	if v < 0 {
		return bcerr.New(bcerr.Exec, "bad-scale")
	}
	atomic.StoreInt32(&c.scale, int32(v))
	return nil
}

// PosixStrict reports whether non-POSIX constructs should be warned about
// (and, per the host's policy, possibly treated as fatal).
func (c *Config) PosixStrict() bool {
	if c == nil {
		return false
	}
	return c.posixStrict
}

func (c *Config) SetPosixStrict(v bool) { c.posixStrict = v }

func (c *Config) Debug(name string) bool {
	if c == nil {
		return false
	}
	return c.debug[name]
}

func (c *Config) SetDebug(name string, v bool) {
	if c.debug == nil {
		c.debug = make(map[string]bool)
	}
	c.debug[name] = v
}

// Interrupt sets the shared interrupt flag. Typically called from a signal
// handler in the host; see the VM and kernel loops that poll Interrupted.
func (c *Config) Interrupt() { atomic.StoreInt32(&c.interrupted, 1) }

// Interrupted reports and does not clear the interrupt flag.
func (c *Config) Interrupted() bool { return atomic.LoadInt32(&c.interrupted) != 0 }

// ClearInterrupt is called by the REPL once it has unwound back to
// a safe state, per spec §5 ("cleared by the REPL after acknowledgement").
func (c *Config) ClearInterrupt() { atomic.StoreInt32(&c.interrupted, 0) }

// New returns a Config with the documented defaults.
func New() *Config {
	c := &Config{}
	c.SetIbase(10)
	c.SetObase(10)
	return c
}
