package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionCurrent = 1

// Encode serializes a session into the versioned binary record stored in
// Redis. Field order is fixed: token, identity fields, timestamps.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if len(s.Token) > 65535 {
		return nil, errors.New("token too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(s.Token)

	for _, field := range []string{s.Identity.ID, s.Identity.FullName, s.Identity.Email, string(s.Identity.Role)} {
		if len(field) > 255 {
			return nil, errors.New("identity field too long")
		}
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary record produced by [Encode]. It validates framing
// only; structural rules (non-empty email, known role) are the store's job.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.Token = string(token)

	fields := make([]string, 4)
	for i := range fields {
		fieldLen, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		fields[i] = string(field)
	}
	s.Identity.ID = fields[0]
	s.Identity.FullName = fields[1]
	s.Identity.Email = fields[2]
	s.Identity.Role = Role(fields[3])

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
