package tokenstore

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("session")

// BoltStore persists records in a local bbolt file. It is the default store
// for single-terminal deployments.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path and ensures the
// session bucket exists.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(ctx context.Context, profileID string) (*Record, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(profileID))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (s *BoltStore) Save(ctx context.Context, profileID string, rec *Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(profileID), data)
	})
}

func (s *BoltStore) SetAccessToken(ctx context.Context, profileID, accessToken, refreshToken string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		v := b.Get([]byte(profileID))
		if v == nil {
			return ErrNotFound
		}
		rec, err := Decode(v)
		if err != nil {
			return err
		}

		rec.AccessToken = accessToken
		if refreshToken != "" {
			rec.RefreshToken = refreshToken
		}
		rec.UpdatedAt = time.Now().Unix()

		data, err := Encode(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(profileID), data)
	})
}

func (s *BoltStore) Clear(ctx context.Context, profileID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(profileID))
	})
}
