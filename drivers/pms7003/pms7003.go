// Package pms7003 provides a driver for the Plantower PMS7003 particulate
// sensor on a 9600 8N1 serial link.
//
// In active mode the sensor streams a 32-byte frame roughly once a second:
//
//	0x42 0x4D  len(2)=28  13 data words  checksum(2)
//
// The checksum is the 16-bit sum of the first 30 bytes. Commands are 7-byte
// frames (0x42 0x4D cmd dataH dataL lrcH lrcL). Sleep is acknowledged by the
// 8-byte frame 42 4D 00 04 E4 00 01 77; wake is not acknowledged.
//
// Because frames keep streaming, a sleep request can be answered by the tail
// of a data frame instead of the acknowledgement. That surfaces as
// errcode.IncorrectResponse and the caller may simply try again.
package pms7003

import (
	"context"
	"time"

	"atmo-monitor-go/errcode"
)

const (
	magic0 = 0x42
	magic1 = 0x4D

	FrameLen    = 32
	frameBody   = 28 // value of the length field in a data frame
	commandLen  = 7
	responseLen = 8

	cmdSleepWake = 0xE4
)

var sleepAck = [responseLen]byte{0x42, 0x4D, 0x00, 0x04, 0xE4, 0x00, 0x01, 0x77}

// Port is the serial link. It is satisfied by uartx.UART on RP2 targets.
type Port interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// Config controls timing. All fields are optional.
type Config struct {
	// FrameTimeout bounds the wait for one data frame. Default 3 s (the sensor
	// slows to one frame per 2.3 s in stable conditions).
	FrameTimeout time.Duration
	// ResponseTimeout bounds the wait for a command acknowledgement. Default 1 s.
	ResponseTimeout time.Duration
}

// Frame is one decoded data frame.
type Frame struct {
	PM1_0    uint16 // CF=1 standard particle
	PM2_5    uint16
	PM10     uint16
	PM1_0Atm uint16 // atmospheric environment
	PM2_5Atm uint16
	PM10Atm  uint16

	// Particle counts per 0.1 L beyond the given diameter (µm).
	Beyond0_3  uint16
	Beyond0_5  uint16
	Beyond1_0  uint16
	Beyond2_5  uint16
	Beyond5_0  uint16
	Beyond10_0 uint16
}

// Device wraps a serial connection to a PMS7003.
type Device struct {
	port Port
	cfg  Config

	rx  [64]byte // bytes received but not yet consumed
	n   int
	cmd [commandLen]byte
	fr  [FrameLen]byte
}

// New creates a Device. The port must already be configured for 9600 baud.
func New(port Port, cfg Config) *Device {
	if cfg.FrameTimeout <= 0 {
		cfg.FrameTimeout = 3 * time.Second
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = time.Second
	}
	return &Device{port: port, cfg: cfg}
}

// Read returns the next valid-looking data frame.
func (d *Device) Read(ctx context.Context) (Frame, error) {
	rctx, cancel := context.WithTimeout(ctx, d.cfg.FrameTimeout)
	defer cancel()

	if err := d.readFrame(rctx, d.fr[:]); err != nil {
		return Frame{}, err
	}
	return Decode(d.fr[:])
}

// Wake asks the sensor to leave sleep mode. The sensor sends no acknowledgement.
func (d *Device) Wake(ctx context.Context) error {
	return d.send(cmdSleepWake, 1)
}

// Sleep asks the sensor to enter sleep mode and waits for the acknowledgement.
func (d *Device) Sleep(ctx context.Context) error {
	d.n = 0 // stale stream bytes cannot be the answer to this request
	if err := d.send(cmdSleepWake, 0); err != nil {
		return err
	}
	rctx, cancel := context.WithTimeout(ctx, d.cfg.ResponseTimeout)
	defer cancel()

	var resp [responseLen]byte
	if err := d.readFrame(rctx, resp[:]); err != nil {
		return err
	}
	if resp != sleepAck {
		return &errcode.E{C: errcode.IncorrectResponse, Op: "pms7003.sleep"}
	}
	return nil
}

func (d *Device) send(cmd byte, data uint16) error {
	EncodeCommand(d.cmd[:], cmd, data)
	n, err := d.port.Write(d.cmd[:])
	if err != nil {
		return &errcode.E{C: errcode.SendFailed, Op: "pms7003.send", Err: err}
	}
	if n != commandLen {
		return &errcode.E{C: errcode.SendFailed, Op: "pms7003.send", Msg: "short write"}
	}
	return nil
}

// readFrame syncs on the 0x42 0x4D preamble and fills out (which starts with it).
func (d *Device) readFrame(ctx context.Context, out []byte) error {
	// Hunt for the preamble.
	for {
		if err := d.fill(ctx, 2); err != nil {
			return err
		}
		if d.rx[0] == magic0 && d.rx[1] == magic1 {
			break
		}
		d.consume(1)
	}
	if err := d.fill(ctx, len(out)); err != nil {
		return err
	}
	copy(out, d.rx[:len(out)])
	d.consume(len(out))
	return nil
}

// fill blocks until at least want bytes are buffered.
func (d *Device) fill(ctx context.Context, want int) error {
	for d.n < want {
		n, err := d.port.RecvSomeContext(ctx, d.rx[d.n:])
		d.n += n
		if d.n >= want {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return &errcode.E{C: errcode.NoResponse, Op: "pms7003.recv", Err: err}
			}
			return &errcode.E{C: errcode.BusFault, Op: "pms7003.recv", Err: err}
		}
	}
	return nil
}

func (d *Device) consume(k int) {
	copy(d.rx[:], d.rx[k:d.n])
	d.n -= k
}

// EncodeCommand writes a 7-byte command frame into dst.
func EncodeCommand(dst []byte, cmd byte, data uint16) {
	dst[0] = magic0
	dst[1] = magic1
	dst[2] = cmd
	dst[3] = byte(data >> 8)
	dst[4] = byte(data)
	var sum uint16
	for _, b := range dst[:5] {
		sum += uint16(b)
	}
	dst[5] = byte(sum >> 8)
	dst[6] = byte(sum)
}

// Decode validates and decodes a 32-byte data frame.
func Decode(b []byte) (Frame, error) {
	if len(b) < FrameLen || b[0] != magic0 || b[1] != magic1 {
		return Frame{}, &errcode.E{C: errcode.IncorrectResponse, Op: "pms7003.decode", Msg: "bad preamble"}
	}
	if word(b, 2) != frameBody {
		return Frame{}, &errcode.E{C: errcode.IncorrectResponse, Op: "pms7003.decode", Msg: "unexpected length"}
	}
	var sum uint16
	for _, x := range b[:FrameLen-2] {
		sum += uint16(x)
	}
	if sum != word(b, FrameLen-2) {
		return Frame{}, &errcode.E{C: errcode.Checksum, Op: "pms7003.decode"}
	}
	return Frame{
		PM1_0:      word(b, 4),
		PM2_5:      word(b, 6),
		PM10:       word(b, 8),
		PM1_0Atm:   word(b, 10),
		PM2_5Atm:   word(b, 12),
		PM10Atm:    word(b, 14),
		Beyond0_3:  word(b, 16),
		Beyond0_5:  word(b, 18),
		Beyond1_0:  word(b, 20),
		Beyond2_5:  word(b, 22),
		Beyond5_0:  word(b, 24),
		Beyond10_0: word(b, 26),
	}, nil
}

// Encode builds a data frame for f, checksum included. Used by simulators and tests.
func Encode(dst []byte, f Frame) {
	dst[0], dst[1] = magic0, magic1
	putWord(dst, 2, frameBody)
	vals := [...]uint16{
		f.PM1_0, f.PM2_5, f.PM10, f.PM1_0Atm, f.PM2_5Atm, f.PM10Atm,
		f.Beyond0_3, f.Beyond0_5, f.Beyond1_0, f.Beyond2_5, f.Beyond5_0, f.Beyond10_0,
		0, // reserved
	}
	for i, v := range vals {
		putWord(dst, 4+2*i, v)
	}
	var sum uint16
	for _, x := range dst[:FrameLen-2] {
		sum += uint16(x)
	}
	putWord(dst, FrameLen-2, sum)
}

// SleepAck returns the acknowledgement frame for a sleep command.
func SleepAck() []byte { b := sleepAck; return b[:] }

func word(b []byte, i int) uint16 { return uint16(b[i])<<8 | uint16(b[i+1]) }

func putWord(b []byte, i int, v uint16) {
	b[i] = byte(v >> 8)
	b[i+1] = byte(v)
}
