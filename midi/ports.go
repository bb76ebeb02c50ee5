package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// portTimeout bounds a port listing. CoreMIDI can hang.
const portTimeout = 3 * time.Second

// ErrPortTimeout is returned when the MIDI driver does not answer
var ErrPortTimeout = errors.New("midi driver did not list ports in time")

// Ports lists input and output ports
func Ports() (ins []drivers.In, outs []drivers.Out, err error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(portTimeout):
		return nil, nil, ErrPortTimeout
	}
}

// PortNames lists the names of input and output ports
func PortNames() (ins, outs []string, err error) {
	inPorts, outPorts, err := Ports()
	if err != nil {
		return nil, nil, err
	}
	for _, p := range inPorts {
		ins = append(ins, p.String())
	}
	for _, p := range outPorts {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}

// Sender sends one message to an output port
type Sender func(gomidi.Message) error

// OpenOutput opens the output port with the given name
func OpenOutput(name string) (Sender, error) {
	_, outs, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, port := range outs {
		if port.String() == name {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open output %s: %w", name, err)
			}
			return send, nil
		}
	}
	return nil, fmt.Errorf("output port %q not found", name)
}

// OpenKeyboard starts listening on the input port with the given name
func OpenKeyboard(name string) (Controller, error) {
	ins, _, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, port := range ins {
		if port.String() == name {
			return NewKeyboardController(name, port)
		}
	}
	return nil, fmt.Errorf("input port %q not found", name)
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
