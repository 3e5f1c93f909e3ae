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

const resetAttemptRecordVersion1 = 1

var (
	ErrResetAttemptNotFound = errors.New("reset attempt not found")
	ErrResetAttemptExpired  = errors.New("reset attempt expired")
	ErrResetAttemptExceeded = errors.New("reset attempt verify limit exceeded")
	ErrResetAttemptBackend  = errors.New("reset attempt backend unavailable")
)

// ResetAttempt is the state carried from a successful reset-OTP dispatch to
// the verify-and-reset step. Email and Role identify the TARGET account.
// Actor fields are populated on delegated attempts only, for audit.
type ResetAttempt struct {
	Email       string
	Role        string
	PreviewName string
	ActorID     string
	ActorEmail  string
	Delegated   bool
	ExpiresAt   int64
	Attempts    uint16
}

type ResetAttemptStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewResetAttemptStore(redisClient redis.UniversalClient, prefix string) *ResetAttemptStore {
	if prefix == "" {
		prefix = "hra"
	}
	return &ResetAttemptStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *ResetAttemptStore) key(attemptID string) string {
	return s.prefix + ":" + attemptID
}

func (s *ResetAttemptStore) Save(
	ctx context.Context,
	attemptID string,
	record *ResetAttempt,
	ttl time.Duration,
) error {
	encoded, err := encodeResetAttempt(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(attemptID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrResetAttemptBackend, err)
	}
	return nil
}

func (s *ResetAttemptStore) Get(ctx context.Context, attemptID string) (*ResetAttempt, error) {
	data, err := s.redis.Get(ctx, s.key(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrResetAttemptNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrResetAttemptBackend, err)
	}

	record, err := decodeResetAttempt(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(attemptID)).Result()
		return nil, ErrResetAttemptExpired
	}
	return record, nil
}

func (s *ResetAttemptStore) Delete(ctx context.Context, attemptID string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(attemptID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrResetAttemptBackend, err)
	}
	return n > 0, nil
}

// RecordFailure mirrors LoginAttemptStore.RecordFailure for reset attempts.
func (s *ResetAttemptStore) RecordFailure(
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

			record, err := decodeResetAttempt(data)
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
				return ErrResetAttemptExpired
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

			updated, err := encodeResetAttempt(record)
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
				return false, ErrResetAttemptNotFound
			}
			if errors.Is(err, ErrResetAttemptExpired) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", ErrResetAttemptBackend, err)
		}
		return exceeded, nil
	}

	return false, ErrResetAttemptNotFound
}

func encodeResetAttempt(record *ResetAttempt) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(resetAttemptRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if record.Delegated {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	for _, field := range []string{record.Email, record.Role, record.PreviewName, record.ActorID, record.ActorEmail} {
		if len(field) > 65535 {
			return nil, errors.New("reset attempt field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeResetAttempt(data []byte) (*ResetAttempt, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != resetAttemptRecordVersion1 {
		return nil, errors.New("invalid reset attempt version")
	}

	record := &ResetAttempt{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	delegated, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	record.Delegated = delegated == 1

	fields := make([]string, 5)
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
	record.ActorID = fields[3]
	record.ActorEmail = fields[4]

	return record, nil
}
