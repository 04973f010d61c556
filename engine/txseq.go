package engine

import "encoding/binary"

// noTransactionSeq tags a record that replay must always treat as
// committed: every write made outside a WriteBatch, and everything
// CompactRange carries forward (compaction only ever rewrites data
// the index already considers live, so it is trivially committed).
const noTransactionSeq uint64 = 0

// txFinishKey marks the end of one WriteBatch's records in a column
// family's log. Replay only applies a batch's records once it also
// finds that batch's finish marker; otherwise the batch was
// interrupted mid-commit and its records are orphans to be ignored.
var txFinishKey = []byte("blackwidow-tx-finish")

// addTxSeqPrefix prepends seq, varint-encoded, to key. Every record
// appendRecord writes carries this prefix so replay can tell which
// batch (if any) produced it.
func addTxSeqPrefix(key []byte, seq uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, seq)
	out := make([]byte, n+len(key))
	copy(out, buf[:n])
	copy(out[n:], key)
	return out
}

// parseTxSeqPrefix reverses addTxSeqPrefix.
func parseTxSeqPrefix(key []byte) (realKey []byte, seq uint64) {
	seq, n := binary.Uvarint(key)
	return key[n:], seq
}
