package printer

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, TypeNone, p.Type())
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print([]byte("ignored")))

	_, err = New(Config{Type: TypeUSB})
	assert.Error(t, err)

	_, err = New(Config{Type: TypeNetwork})
	assert.Error(t, err)

	_, err = New(Config{Type: "bluetooth"})
	assert.ErrorContains(t, err, "unknown printer type")
}

func TestUSBPrinter_WritesToDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p, err := New(Config{Type: TypeUSB, USBPath: path})
	require.NoError(t, err)
	assert.True(t, p.IsConnected())

	require.NoError(t, p.Print([]byte("receipt")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(got))
}

func TestUSBPrinter_MissingDevice(t *testing.T) {
	p, err := New(Config{Type: TypeUSB, USBPath: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	assert.False(t, p.IsConnected())
	assert.Error(t, p.Print([]byte("x")))
}

func TestNetworkPrinter_SendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := New(Config{Type: TypeNetwork, Address: ln.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, p.Print([]byte{ESC, '@', 'h', 'i'}))

	assert.Equal(t, []byte{ESC, '@', 'h', 'i'}, <-received)
}

func TestDocument_Layout(t *testing.T) {
	d := NewDocument(20)

	d.KeyValue("Total:", "₦2,400.00")
	d.ItemLine("Satin Acrylic Emulsion", "₦12.00")
	d.DetailLine("2 kg × ₦6.00/kg")
	d.Separator('-')

	lines := bytes.Split(bytes.TrimPrefix(d.Bytes(), []byte{ESC, '@'}), []byte{LF})
	require.GreaterOrEqual(t, len(lines), 4)

	assert.Equal(t, "Total:     N2,400.00", string(lines[0]))
	assert.Equal(t, "Satin Acrylic N12.00", string(lines[1]))
	assert.Equal(t, "  2 kg x N6.00/kg", string(lines[2]))
	assert.Equal(t, "--------------------", string(lines[3]))
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "N45,200.00", Printable("₦45,200.00"))
	assert.Equal(t, "plain", Printable("plain"))
	assert.Equal(t, "caf?", Printable("café"))
}

func TestDocument_Reset(t *testing.T) {
	d := NewDocument(0)
	assert.Equal(t, Width58mm, d.Width())

	d.Text("hello").Cut()
	d.Reset()
	assert.Equal(t, []byte{ESC, '@'}, d.Bytes())
}
