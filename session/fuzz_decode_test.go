package session

import "testing"

func FuzzDecode(f *testing.F) {
	seed, err := Encode(&Session{
		Token: "tok",
		Identity: Identity{
			ID:       "u1",
			FullName: "Asha Verma",
			Email:    "asha@example.com",
			Role:     RoleWarden,
		},
		CreatedAt: 100,
		ExpiresAt: 200,
	})
	if err != nil {
		f.Fatalf("seed Encode failed: %v", err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{sessionFormatVersionCurrent})
	f.Add([]byte{0xFF, 0x00, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		sess, err := Decode(data)
		if err != nil {
			return
		}
		// Anything that decodes must re-encode and round-trip to the same
		// record.
		encoded, err := Encode(sess)
		if err != nil {
			t.Fatalf("re-encode failed for decoded session: %v", err)
		}
		again, err := Decode(encoded)
		if err != nil {
			t.Fatalf("round-trip decode failed: %v", err)
		}
		if *again != *sess {
			t.Fatalf("round-trip mismatch: %+v vs %+v", again, sess)
		}
	})
}
