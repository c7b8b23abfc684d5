package disk

// Scheduler serializes page reads and writes against a single File behind
// a request channel, so the buffer pool can issue a disk operation and
// block on its response channel without taking the file's lock itself.
//
// A per-page worker goroutine spun up on first request and torn down the
// moment its queue briefly drained would drop a request arriving in the
// gap between the drain check and the goroutine's exit. A single
// dispatcher loop avoids that race; nothing in the index's access pattern
// needs per-page concurrency, since callers never touch one Index
// concurrently.
type Scheduler struct {
	reqCh chan Request
	file  *File
	done  chan struct{}
}

// Request is a single page read or write, along with the channel its
// Response will be delivered on.
type Request struct {
	PageId PageId
	Data   []byte
	Write  bool
	RespCh chan Response
}

// Response carries the result of a Request.
type Response struct {
	Data []byte
	Err  error
}

// NewScheduler starts a dispatcher goroutine bound to file.
func NewScheduler(file *File) *Scheduler {
	s := &Scheduler{
		reqCh: make(chan Request, 64),
		file:  file,
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// NewRequest builds a Request with a fresh response channel.
func NewRequest(pageId PageId, data []byte, write bool) Request {
	return Request{
		PageId: pageId,
		Data:   data,
		Write:  write,
		RespCh: make(chan Response, 1),
	}
}

// Schedule enqueues req and returns its response channel.
func (s *Scheduler) Schedule(req Request) <-chan Response {
	s.reqCh <- req
	return req.RespCh
}

// Stop shuts the dispatcher goroutine down. No further requests may be
// scheduled afterward.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) run() {
	for {
		select {
		case req := <-s.reqCh:
			if req.Write {
				err := s.file.WritePage(req.PageId, req.Data)
				req.RespCh <- Response{Err: err}
				continue
			}

			buf := make([]byte, PageSize)
			err := s.file.ReadPage(req.PageId, buf)
			req.RespCh <- Response{Data: buf, Err: err}
		case <-s.done:
			return
		}
	}
}
