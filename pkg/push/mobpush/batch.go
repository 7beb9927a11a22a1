package mobpush

import "github.com/eachchat/mob-push/pkg/push"

// Batch is the registration ids targeted by one request. It is never empty.
type Batch []string

// Iterator yields audience members one at a time.
type Iterator interface {
	Next() (push.AudienceMember, bool)
}

// SliceIterator iterates members in order.
func SliceIterator(members []push.AudienceMember) Iterator {
	return &sliceIterator{members: members}
}

type sliceIterator struct {
	members []push.AudienceMember
	pos     int
}

func (it *sliceIterator) Next() (push.AudienceMember, bool) {
	if it.pos >= len(it.members) {
		return nil, false
	}
	m := it.members[it.pos]
	it.pos++
	return m, true
}

// NextBatch pulls up to size members from it. It returns nil once it is
// exhausted; the last batch may be shorter than size.
func NextBatch(it Iterator, size int) Batch {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}

	var batch Batch
	for len(batch) < size {
		m, ok := it.Next()
		if !ok {
			break
		}
		if batch == nil {
			batch = make(Batch, 0, size)
		}
		batch = append(batch, m.MobID())
	}
	return batch
}
