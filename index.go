package todotxt

import (
	"sort"
	"weak"
)

// taskRef abstracts strong and weak task membership. A weak ref answers nil
// once its task has been collected.
type taskRef interface {
	task() *Task
}

type strongRef struct{ t *Task }

func (r strongRef) task() *Task { return r.t }

type weakRef struct{ p weak.Pointer[Task] }

func (r weakRef) task() *Task { return r.p.Value() }

// index maps, per indexed kind, a canonical value string to the tasks
// currently carrying that value. It is owned by a List, shares the list's
// membership mode, and is only touched under the list's lock. Empty values
// (an unset priority) are not indexed; an absent value means no entry.
type index struct {
	buckets map[*TokenKind]map[string][]taskRef
}

func newIndex() *index {
	return &index{buckets: make(map[*TokenKind]map[string][]taskRef)}
}

func (ix *index) add(ref taskRef, t *Task, tok Token) {
	if tok.IsZero() || !tok.Kind.Indexed {
		return
	}
	key := tok.Value.String()
	if key == "" {
		return
	}
	kindBuckets := ix.buckets[tok.Kind]
	if kindBuckets == nil {
		kindBuckets = make(map[string][]taskRef)
		ix.buckets[tok.Kind] = kindBuckets
	}
	for _, r := range kindBuckets[key] {
		if r.task() == t {
			return
		}
	}
	kindBuckets[key] = append(kindBuckets[key], ref)
}

// remove drops the task from the bucket of one specific value.
func (ix *index) remove(t *Task, tok Token) {
	if tok.IsZero() || !tok.Kind.Indexed {
		return
	}
	kindBuckets := ix.buckets[tok.Kind]
	if kindBuckets == nil {
		return
	}
	key := tok.Value.String()
	ix.dropFromBucket(kindBuckets, key, t)
	if len(kindBuckets) == 0 {
		delete(ix.buckets, tok.Kind)
	}
}

// removeKind drops the task from every value bucket of a kind. Singleton
// replacement uses this: whatever old value the task held, it is gone now.
func (ix *index) removeKind(t *Task, k *TokenKind) {
	kindBuckets := ix.buckets[k]
	for key := range kindBuckets {
		ix.dropFromBucket(kindBuckets, key, t)
	}
	if len(kindBuckets) == 0 {
		delete(ix.buckets, k)
	}
}

// drop removes the task from every bucket of every kind.
func (ix *index) drop(t *Task) {
	for k := range ix.buckets {
		ix.removeKind(t, k)
	}
}

func (ix *index) dropFromBucket(kindBuckets map[string][]taskRef, key string, t *Task) {
	refs, ok := kindBuckets[key]
	if !ok {
		return
	}
	kept := refs[:0]
	for _, r := range refs {
		held := r.task()
		if held == nil || held == t {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		delete(kindBuckets, key)
	} else {
		kindBuckets[key] = kept
	}
}

// tasksFor returns the live tasks holding the value, in insertion order.
func (ix *index) tasksFor(k *TokenKind, value string) []*Task {
	var out []*Task
	for _, r := range ix.buckets[k][value] {
		if t := r.task(); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// values returns the sorted distinct values of a kind that at least one
// live task holds.
func (ix *index) values(k *TokenKind) []string {
	kindBuckets := ix.buckets[k]
	out := make([]string, 0, len(kindBuckets))
	for key, refs := range kindBuckets {
		for _, r := range refs {
			if r.task() != nil {
				out = append(out, key)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// holds reports whether the task sits in the bucket for the value.
func (ix *index) holds(k *TokenKind, value string, t *Task) bool {
	for _, r := range ix.buckets[k][value] {
		if r.task() == t {
			return true
		}
	}
	return false
}

// sweep prunes refs whose tasks have been collected.
func (ix *index) sweep() {
	for k, kindBuckets := range ix.buckets {
		for key, refs := range kindBuckets {
			kept := refs[:0]
			for _, r := range refs {
				if r.task() != nil {
					kept = append(kept, r)
				}
			}
			if len(kept) == 0 {
				delete(kindBuckets, key)
			} else {
				kindBuckets[key] = kept
			}
		}
		if len(kindBuckets) == 0 {
			delete(ix.buckets, k)
		}
	}
}
