package varcodec

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for collecting whole inputs in ReadAll.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// maxPooledSize keeps one oversized input from pinning its buffer in the pool.
const maxPooledSize = 1 << 20

func putBytesBuf(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledSize {
		return
	}
	bytesBufPool.Put(buf)
}
