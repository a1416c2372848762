package tokenstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const recordFormatVersionCurrent = 1

// Encode serializes rec into the current binary format: a version byte
// followed by uint16 length-prefixed strings, a flag byte, and the
// big-endian UpdatedAt timestamp.
func Encode(rec *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	fields := []string{
		rec.AccessToken,
		rec.RefreshToken,
		rec.UserID,
		rec.Username,
		rec.Email,
		rec.Firstname,
		rec.Lastname,
		rec.Phone,
		rec.Role,
	}
	for _, f := range fields {
		if err := writeString(&buf, f); err != nil {
			return nil, err
		}
	}

	if rec.TwoFactorEnabled {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, rec.UpdatedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses data produced by [Encode]. Any framing violation returns
// [ErrCorruptRecord].
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	if version != recordFormatVersionCurrent {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, version)
	}

	rec := &Record{}
	fields := []*string{
		&rec.AccessToken,
		&rec.RefreshToken,
		&rec.UserID,
		&rec.Username,
		&rec.Email,
		&rec.Firstname,
		&rec.Lastname,
		&rec.Phone,
		&rec.Role,
	}
	for _, f := range fields {
		s, err := readString(reader)
		if err != nil {
			return nil, ErrCorruptRecord
		}
		*f = s
	}

	flag, err := reader.ReadByte()
	if err != nil || flag > 1 {
		return nil, ErrCorruptRecord
	}
	rec.TwoFactorEnabled = flag == 1

	if err := binary.Read(reader, binary.BigEndian, &rec.UpdatedAt); err != nil {
		return nil, ErrCorruptRecord
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrCorruptRecord)
	}

	return rec, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("field too long: %d bytes", len(s))
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(reader, b); err != nil {
		return "", err
	}
	return string(b), nil
}
