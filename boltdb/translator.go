// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package boltdb stores label encodings in a bolt database file, so that ids
// stay stable across runs.
package boltdb

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

var (
	idBucket  = []byte("idKey")
	valBucket = []byte("valKey")
)

var _ bankdata.Translator = &Translator{}

// Translator is a bankdata.Translator backed by a bolt file. Each column gets
// a pair of sub-buckets: id -> encoded value and encoded value -> id.
type Translator struct {
	Db      *bolt.DB
	cmu     sync.RWMutex
	columns map[string]struct{}
}

// Close syncs and closes the underlying boltdb.
func (bt *Translator) Close() error {
	err := bt.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return bt.Db.Close()
}

// NewTranslator opens (creating if needed) the bolt file at filename and
// makes sure the given columns exist.
func NewTranslator(filename string, columns ...string) (bt *Translator, err error) {
	bt = &Translator{
		columns: make(map[string]struct{}),
	}
	bt.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, NoGrowSync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	bt.Db.MaxBatchDelay = 400 * time.Microsecond
	err = bt.Db.Update(func(tx *bolt.Tx) error {
		ib, err := tx.CreateBucketIfNotExists(idBucket)
		if err != nil {
			return errors.Wrap(err, "creating idKey bucket")
		}
		vb, err := tx.CreateBucketIfNotExists(valBucket)
		if err != nil {
			return errors.Wrap(err, "creating valKey bucket")
		}
		for _, column := range columns {
			if err := bt.addColumn(ib, vb, column); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		bt.Db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return bt, nil
}

func (bt *Translator) addColumn(ib, vb *bolt.Bucket, column string) error {
	if _, err := ib.CreateBucketIfNotExists([]byte(column)); err != nil {
		return errors.Wrap(err, "adding "+column+" to id bucket")
	}
	if _, err := vb.CreateBucketIfNotExists([]byte(column)); err != nil {
		return errors.Wrap(err, "adding "+column+" to val bucket")
	}
	bt.cmu.Lock()
	bt.columns[column] = struct{}{}
	bt.cmu.Unlock()
	return nil
}

func (bt *Translator) ensureColumn(column string) error {
	bt.cmu.RLock()
	_, ok := bt.columns[column]
	bt.cmu.RUnlock()
	if ok {
		return nil
	}
	return bt.Db.Update(func(tx *bolt.Tx) error {
		return bt.addColumn(tx.Bucket(idBucket), tx.Bucket(valBucket), column)
	})
}

// Get returns the value previously assigned id in column.
func (bt *Translator) Get(column string, id uint64) (val interface{}, err error) {
	bt.cmu.RLock()
	_, ok := bt.columns[column]
	bt.cmu.RUnlock()
	if !ok {
		return nil, errors.Errorf("can't Get() with unknown column '%v'", column)
	}
	var data []byte
	err = bt.Db.View(func(tx *bolt.Tx) error {
		fib := tx.Bucket(idBucket).Bucket([]byte(column))
		v := fib.Get(idKey(id))
		if v == nil {
			return errors.Errorf("id %d not found", id)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "column '%v'", column)
	}
	return bankdata.ValueFromBytes(data)
}

// GetID maps val to a monotonic id within column, starting at 0.
func (bt *Translator) GetID(column string, val interface{}) (id uint64, err error) {
	if err := bt.ensureColumn(column); err != nil {
		return 0, errors.Wrap(err, "adding column in GetID")
	}
	nval, err := bankdata.NormalizeValue(val)
	if err != nil {
		return 0, errors.Wrap(err, "normalizing value")
	}
	bsval, err := bankdata.ValueToBytes(nval)
	if err != nil {
		return 0, errors.Wrapf(err, "encoding value for column %v", column)
	}

	// look up to see if this val is already mapped to an id
	var ret []byte
	err = bt.Db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(valBucket).Bucket([]byte(column)).Get(bsval); v != nil {
			ret = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "reading value bucket")
	}
	if len(ret) == 8 {
		return binary.BigEndian.Uint64(ret), nil
	}

	// get new id, and map it in both directions. Another writer may have
	// mapped val since the lookup above, so look again inside the batch.
	err = bt.Db.Batch(func(tx *bolt.Tx) error {
		fib := tx.Bucket(idBucket).Bucket([]byte(column))
		fvb := tx.Bucket(valBucket).Bucket([]byte(column))
		if v := fvb.Get(bsval); len(v) == 8 {
			id = binary.BigEndian.Uint64(v)
			return nil
		}
		seq, err := fib.NextSequence()
		if err != nil {
			return err
		}
		id = seq - 1
		keybytes := idKey(id)
		err = fib.Put(keybytes, bsval)
		if err != nil {
			return errors.Wrap(err, "inserting into idKey bucket")
		}
		err = fvb.Put(bsval, keybytes)
		if err != nil {
			return errors.Wrap(err, "inserting into valKey bucket")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func idKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}
