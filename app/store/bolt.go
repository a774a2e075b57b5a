package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// usersBkt maps chat ids to json-encoded users.
var usersBkt = []byte("users")

// Bolt keeps bot users in a bbolt file.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) users.db in the given directory.
// It fails if the file is held by another process for more than a second.
func NewBolt(dir string) (*Bolt, error) {
	file := filepath.Join(dir, "users.db")

	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt file %s: %w", file, err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBkt)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create users bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put saves the user, replacing the previous record of the chat.
func (b *Bolt) Put(_ context.Context, u User) error {
	bts, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", u.ChatID, err)
	}

	if err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBkt).Put([]byte(u.ChatID), bts)
	}); err != nil {
		return fmt.Errorf("put user %s: %w", u.ChatID, err)
	}

	return nil
}

// Get returns the user of the chat or ErrNotFound.
func (b *Bolt) Get(_ context.Context, chatID string) (User, error) {
	var u User
	err := b.db.View(func(tx *bolt.Tx) error {
		bts := tx.Bucket(usersBkt).Get([]byte(chatID))
		if bts == nil {
			return ErrNotFound
		}
		return decodeUser(bts, &u)
	})
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", chatID, err)
	}

	return u, nil
}

// List returns the users in order of registration.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]User, error) {
	var users []User
	err := b.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(usersBkt).Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var u User
			if err := decodeUser(v, &u); err != nil {
				return err
			}

			if !req.OnlyAuthorized || u.Authorized {
				users = append(users, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].RegisteredAt.Before(users[j].RegisteredAt)
	})

	return users, nil
}

// Delete removes the user of the chat, ErrNotFound if there is none.
func (b *Bolt) Delete(_ context.Context, chatID string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(usersBkt)
		if bkt.Get([]byte(chatID)) == nil {
			return ErrNotFound
		}
		return bkt.Delete([]byte(chatID))
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", chatID, err)
	}

	return nil
}

// Close releases the file.
func (b *Bolt) Close() error { return b.db.Close() }

// decodeUser must not keep references to bts, as it's valid only
// within the transaction.
func decodeUser(bts []byte, u *User) error {
	if err := json.Unmarshal(bts, u); err != nil {
		return fmt.Errorf("unmarshal user: %w", err)
	}
	return nil
}
