// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"fmt"
	"testing"
)

type op struct {
	write bool
	port  uint16
	data  uint8
}

func opstr(o *op) string {
	t := "in"
	if o.write {
		t = "out"
	}
	return fmt.Sprintf("{%s @ %#x = %02x}", t, o.port, o.data)
}

// fakePort replays a script of expected port operations.
type fakePort struct {
	t      *testing.T
	ops    []op
	closed bool
}

func (p *fakePort) next() (op, bool) {
	if len(p.ops) == 0 {
		return op{}, false
	}
	o := p.ops[0]
	p.ops = p.ops[1:]
	return o, true
}

func (p *fakePort) In(port uint16) (uint8, error) {
	o, ok := p.next()
	if !ok {
		p.t.Errorf("Unexpected in @ %#x after end of script", port)
		return 0, nil
	}
	if o.write || o.port != port {
		p.t.Errorf("Expected %s, got in @ %#x", opstr(&o), port)
	}
	return o.data, nil
}

func (p *fakePort) Out(port uint16, v uint8) error {
	o, ok := p.next()
	if !ok {
		p.t.Errorf("Unexpected out @ %#x = %02x after end of script", port, v)
		return nil
	}
	if !o.write || o.port != port || o.data != v {
		p.t.Errorf("Expected %s, got out @ %#x = %02x", opstr(&o), port, v)
	}
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) ExpectOut(port uint16, v uint8) {
	p.ops = append(p.ops, op{true, port, v})
}

func (p *fakePort) FakeIn(port uint16, v uint8) {
	p.ops = append(p.ops, op{false, port, v})
}

func (p *fakePort) Done() {
	for i := range p.ops {
		p.t.Errorf("Script not consumed: %s", opstr(&p.ops[i]))
	}
}

func fakePorts(t *testing.T) *fakePort {
	return &fakePort{t: t}
}

const (
	statusIBF = 1 << 1
	statusOBF = 1 << 0
)

// simController behaves like an EC: it latches commands, keeps IBF set for
// a number of status polls after every byte it receives and raises OBF
// when a read result is ready.
type simController struct {
	mem     [256]uint8
	busy    int // status polls IBF stays set after each received byte
	pending int
	state   int
	addr    uint8
	out     uint8
	obf     bool
	log     []string
}

const (
	simIdle = iota
	simReadAddr
	simWriteAddr
	simWriteValue
)

func (s *simController) In(port uint16) (uint8, error) {
	switch port {
	case 0x66:
		var st uint8
		if s.pending > 0 {
			s.pending--
			st |= statusIBF
		}
		if s.obf {
			st |= statusOBF
		}
		return st, nil
	case 0x62:
		s.obf = false
		s.log = append(s.log, fmt.Sprintf("result %02x", s.out))
		return s.out, nil
	}
	return 0, fmt.Errorf("no device at port %#x", port)
}

func (s *simController) Out(port uint16, v uint8) error {
	s.pending = s.busy
	switch port {
	case 0x66:
		switch v {
		case 0x80:
			s.state = simReadAddr
		case 0x81:
			s.state = simWriteAddr
		default:
			return fmt.Errorf("unsupported command %#x", v)
		}
		return nil
	case 0x62:
		switch s.state {
		case simReadAddr:
			s.out = s.mem[v]
			s.obf = true
			s.log = append(s.log, fmt.Sprintf("read %02x", v))
			s.state = simIdle
		case simWriteAddr:
			s.addr = v
			s.state = simWriteValue
		case simWriteValue:
			s.mem[s.addr] = v
			s.log = append(s.log, fmt.Sprintf("write %02x=%02x", s.addr, v))
			s.state = simIdle
		default:
			return fmt.Errorf("data byte %#x without command", v)
		}
		return nil
	}
	return fmt.Errorf("no device at port %#x", port)
}

func (s *simController) Close() error {
	return nil
}
