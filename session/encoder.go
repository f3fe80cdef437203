package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	snapshotFormatVersion1 = 1

	snapshotFormatVersionCurrent = snapshotFormatVersion1
)

var (
	// ErrSnapshotTooLarge is an exported constant or variable used by session state.
	ErrSnapshotTooLarge = errors.New("session: snapshot field exceeds encodable size")
	// ErrSnapshotCorrupt is an exported constant or variable used by session state.
	ErrSnapshotCorrupt = errors.New("session: snapshot blob is corrupt")
	// ErrSnapshotVersion is an exported constant or variable used by session state.
	ErrSnapshotVersion = errors.New("session: unsupported snapshot format version")
)

// Encode serializes the snapshot into the versioned binary layout used for
// persistence. Strings are length-prefixed with a single byte, so no field
// may exceed 255 bytes.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
// Encode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(snapshotFormatVersionCurrent)

	for _, field := range []string{s.UserID, s.DisplayName, s.Phone, s.Email} {
		if len(field) > 255 {
			return nil, ErrSnapshotTooLarge
		}
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}

	buf.WriteByte(byte(s.LoginType))

	if err := binary.Write(&buf, binary.BigEndian, s.LastLoginUnixMilli); err != nil {
		return nil, err
	}

	if s.LoggedIn {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode].
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
// Decode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Decode(blob []byte) (Snapshot, error) {
	r := bytes.NewReader(blob)

	version, err := r.ReadByte()
	if err != nil {
		return Snapshot{}, ErrSnapshotCorrupt
	}
	if version != snapshotFormatVersion1 {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrSnapshotVersion, version)
	}

	var s Snapshot
	for _, field := range []*string{&s.UserID, &s.DisplayName, &s.Phone, &s.Email} {
		v, err := readString(r)
		if err != nil {
			return Snapshot{}, err
		}
		*field = v
	}

	loginType, err := r.ReadByte()
	if err != nil {
		return Snapshot{}, ErrSnapshotCorrupt
	}
	s.LoginType = LoginType(loginType)

	if err := binary.Read(r, binary.BigEndian, &s.LastLoginUnixMilli); err != nil {
		return Snapshot{}, ErrSnapshotCorrupt
	}

	loggedIn, err := r.ReadByte()
	if err != nil {
		return Snapshot{}, ErrSnapshotCorrupt
	}
	s.LoggedIn = loggedIn == 1

	if r.Len() != 0 {
		return Snapshot{}, ErrSnapshotCorrupt
	}

	return s, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", ErrSnapshotCorrupt
	}
	if n == 0 {
		return "", nil
	}

	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", ErrSnapshotCorrupt
	}

	return string(raw), nil
}
