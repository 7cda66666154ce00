package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	resultEntryPrefix = "resent"
	resultOrderPrefix = "resord"
	resultSeqPrefix   = "resseq"
)

// makeEntryKey generates a key for a result entry.
// Format: prefix:conversationID:resultID
func makeEntryKey(conversationID, resultID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", resultEntryPrefix, conversationID, resultID))
}

// makeOrderKey generates a composite key for the insertion-order index.
// Format: prefix:conversationID:timestamp:resultID
func makeOrderKey(conversationID string, timestamp time.Time, resultID string) []byte {
	prefix := fmt.Sprintf("%s:%s:", resultOrderPrefix, conversationID)
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(resultID)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], resultID)
	return buf
}

// makeOrderScanPrefix generates the iteration prefix for the order index
// of a conversation.
func makeOrderScanPrefix(conversationID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", resultOrderPrefix, conversationID))
}

// makeSequenceName generates the sequence name for a conversation/tool
// pair.
func makeSequenceName(conversationID, toolName string) string {
	return fmt.Sprintf("%s:%s:%s", resultSeqPrefix, conversationID, toolName)
}
