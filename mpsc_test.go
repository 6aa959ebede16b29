// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/syncx"
)

// =============================================================================
// Mpsc Channel
// =============================================================================

// TestMpscBasic tests a single send/recv round trip.
func TestMpscBasic(t *testing.T) {
	s, r := syncx.Unbounded[string]()

	if err := s.Send("hello world"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	v, err := r.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if v != "hello world" {
		t.Fatalf("Recv: got %q, want %q", v, "hello world")
	}
}

// TestMpscMultiProducer tests that three concurrent senders deliver
// {1,2,3} with no loss or duplication; order across senders is
// unconstrained.
func TestMpscMultiProducer(t *testing.T) {
	s, r := syncx.Unbounded[int]()
	s1 := s.Clone()
	s2 := s.Clone()

	var wg sync.WaitGroup
	for i, sender := range []*syncx.Sender[int]{s, s1, s2} {
		wg.Add(1)
		go func(v int, snd *syncx.Sender[int]) {
			defer wg.Done()
			if err := snd.Send(v); err != nil {
				t.Errorf("Send(%d): %v", v, err)
			}
		}(i+1, sender)
	}
	wg.Wait()

	got := make([]int, 0, 3)
	for range 3 {
		v, err := r.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got = append(got, v)
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("received set: got %v, want [1 2 3]", got)
		}
	}
}

// TestMpscRecvAfterSendersClosed tests that pending items drain before
// closure is reported.
func TestMpscRecvAfterSendersClosed(t *testing.T) {
	s, r := syncx.Unbounded[int]()
	s1 := s.Clone()

	if err := s.Send(1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s1.Send(2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	s.Close()
	s1.Close()

	for i := range 2 {
		if _, err := r.Recv(); err != nil {
			t.Fatalf("Recv(%d) after close with backlog: %v", i, err)
		}
	}

	if _, err := r.Recv(); !syncx.IsClosed(err) {
		t.Fatalf("Recv on drained closed channel: got %v, want ErrNoSender", err)
	}
}

// TestMpscSendAfterReceiverClosed tests the other closure direction.
func TestMpscSendAfterReceiverClosed(t *testing.T) {
	s, r := syncx.Unbounded[int]()
	s1 := s.Clone()
	r.Close()

	if err := s.Send(1); !syncx.IsClosed(err) {
		t.Fatalf("Send after receiver closed: got %v, want ErrNoReceiver", err)
	}
	if err := s1.Send(2); !syncx.IsClosed(err) {
		t.Fatalf("Send via clone after receiver closed: got %v, want ErrNoReceiver", err)
	}
}

// TestMpscBlockedReceiverWakesOnClose tests that closing the last
// sender wakes a receiver blocked on an empty queue.
func TestMpscBlockedReceiverWakesOnClose(t *testing.T) {
	s, r := syncx.Unbounded[int]()

	got := make(chan error, 1)
	go func() {
		_, err := r.Recv()
		got <- err
	}()

	// Let the receiver park on the empty queue.
	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case err := <-got:
		if !syncx.IsClosed(err) {
			t.Fatalf("Recv after last sender closed: got %v, want ErrNoSender", err)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver still blocked after the last sender closed")
	}
}

// TestMpscTryRecv tests the non-blocking receive path.
func TestMpscTryRecv(t *testing.T) {
	s, r := syncx.Unbounded[int]()

	if _, err := r.TryRecv(); !syncx.IsWouldBlock(err) {
		t.Fatalf("TryRecv on empty open channel: got %v, want ErrWouldBlock", err)
	}

	if err := s.Send(9); err != nil {
		t.Fatalf("Send: %v", err)
	}
	v, err := r.TryRecv()
	if err != nil {
		t.Fatalf("TryRecv with backlog: %v", err)
	}
	if v != 9 {
		t.Fatalf("TryRecv: got %d, want 9", v)
	}

	s.Close()
	if _, err := r.TryRecv(); !syncx.IsClosed(err) {
		t.Fatalf("TryRecv on drained closed channel: got %v, want ErrNoSender", err)
	}
}

// TestMpscFastPathCache tests the burst swap: after one locked Recv the
// backlog moves into the receiver's cache and the shared queue is empty.
func TestMpscFastPathCache(t *testing.T) {
	s, r := syncx.Unbounded[int]()
	for i := range 10 {
		if err := s.Send(i); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}

	v, err := r.Recv()
	if err != nil || v != 0 {
		t.Fatalf("Recv: got (%d, %v), want (0, nil)", v, err)
	}
	if n := s.TotalQueuedItems(); n != 0 {
		t.Fatalf("shared queue after burst swap: got %d items, want 0", n)
	}

	for i := 1; i < 10; i++ {
		v, err := r.Recv()
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("FIFO order: got %d, want %d", v, i)
		}
	}
}

// TestMpscOrderPerSender tests FIFO ordering of one sender's items under
// concurrent senders.
func TestMpscOrderPerSender(t *testing.T) {
	const senders = 4
	const perSender = 500

	s, r := syncx.Unbounded[int]()

	var wg sync.WaitGroup
	for p := range senders {
		snd := s.Clone()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer snd.Close()
			for i := range perSender {
				if err := snd.Send(id*100000 + i); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}(p)
	}
	s.Close()

	lastSeen := make(map[int]int, senders)
	received := 0
	for {
		v, err := r.Recv()
		if err != nil {
			if !syncx.IsClosed(err) {
				t.Fatalf("Recv: %v", err)
			}
			break
		}
		id, seq := v/100000, v%100000
		if last, ok := lastSeen[id]; ok && seq <= last {
			t.Fatalf("sender %d out of order: %d after %d", id, seq, last)
		}
		lastSeen[id] = seq
		received++
	}
	wg.Wait()

	if received != senders*perSender {
		t.Fatalf("received: got %d, want %d", received, senders*perSender)
	}

	if r.TotalSenders() != 0 {
		t.Fatalf("TotalSenders: got %d, want 0", r.TotalSenders())
	}
}
