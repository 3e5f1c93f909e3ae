package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptRecordVersion1 = 1

var (
	ErrLoginAttemptNotFound = errors.New("login attempt not found")
	ErrLoginAttemptExpired  = errors.New("login attempt expired")
	ErrLoginAttemptExceeded = errors.New("login attempt verify limit exceeded")
	ErrLoginAttemptBackend  = errors.New("login attempt backend unavailable")
)

// LoginAttempt is the state carried from a successful OTP dispatch to the
// verify step. Email and Role are authoritative for the verify call; the
// preview fields exist only for display.
type LoginAttempt struct {
	Email       string
	Role        string
	PreviewName string
	ExpiresAt   int64
	Attempts    uint16
}

type LoginAttemptStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewLoginAttemptStore(redisClient redis.UniversalClient, prefix string) *LoginAttemptStore {
	if prefix == "" {
		prefix = "hla"
	}
	return &LoginAttemptStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *LoginAttemptStore) key(attemptID string) string {
	return s.prefix + ":" + attemptID
}

func (s *LoginAttemptStore) Save(
	ctx context.Context,
	attemptID string,
	record *LoginAttempt,
	ttl time.Duration,
) error {
	encoded, err := encodeLoginAttempt(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(attemptID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginAttemptBackend, err)
	}
	return nil
}

func (s *LoginAttemptStore) Get(ctx context.Context, attemptID string) (*LoginAttempt, error) {
	data, err := s.redis.Get(ctx, s.key(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLoginAttemptNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLoginAttemptBackend, err)
	}

	record, err := decodeLoginAttempt(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(attemptID)).Result()
		return nil, ErrLoginAttemptExpired
	}
	return record, nil
}

func (s *LoginAttemptStore) Delete(ctx context.Context, attemptID string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(attemptID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLoginAttemptBackend, err)
	}
	return n > 0, nil
}

// RecordFailure increments the verify counter under an optimistic
// transaction. When maxAttempts is reached the record is consumed and
// exceeded=true is returned; the flow must restart from step one.
func (s *LoginAttemptStore) RecordFailure(
	ctx context.Context,
	attemptID string,
	maxAttempts int,
) (bool, error) {
	const maxRetries = 4
	key := s.key(attemptID)

	for i := 0; i < maxRetries; i++ {
		var exceeded bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeLoginAttempt(data)
			if err != nil {
				return err
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrLoginAttemptExpired
			}

			record.Attempts++
			if int(record.Attempts) >= maxAttempts {
				exceeded = true
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			updated, err := encodeLoginAttempt(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, ErrLoginAttemptNotFound
			}
			if errors.Is(err, ErrLoginAttemptExpired) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", ErrLoginAttemptBackend, err)
		}
		return exceeded, nil
	}

	return false, ErrLoginAttemptNotFound
}

func encodeLoginAttempt(record *LoginAttempt) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(loginAttemptRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.Email, record.Role, record.PreviewName} {
		if len(field) > 65535 {
			return nil, errors.New("login attempt field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeLoginAttempt(data []byte) (*LoginAttempt, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != loginAttemptRecordVersion1 {
		return nil, errors.New("invalid login attempt version")
	}

	record := &LoginAttempt{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	fields := make([]string, 3)
	for i := range fields {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		fields[i] = string(field)
	}
	record.Email = fields[0]
	record.Role = fields[1]
	record.PreviewName = fields[2]

	return record, nil
}
