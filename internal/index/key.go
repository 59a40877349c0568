package index

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/tablecore/engine/internal/catalog"
)

// EncodeKey projects values onto the indexed columns (in index-column
// order) and encodes them into a single byte string suitable for
// sorted-slice comparison. Each component is prefixed with its 2-byte
// length, so fixed-width components (INT, BIGINT, BOOLEAN, DATE, TIMESTAMP,
// DECIMAL) compare in value order, while VARCHAR components compare by
// length first and only then byte-wise. The returned bool reports whether
// any projected component was nil: a key with a null component is never
// indexed (NULLs never participate in uniqueness or range scans here).
func EncodeKey(cols []catalog.Column, indexedColumns []int, values []interface{}) ([]byte, bool, error) {
	components := make([][]byte, len(indexedColumns))
	for i, colOffset := range indexedColumns {
		value := values[colOffset]
		if value == nil {
			return nil, true, nil
		}
		comp, err := encodeComponent(cols[colOffset], value)
		if err != nil {
			return nil, false, err
		}
		components[i] = comp
	}
	return packComponents(components), false, nil
}

func packComponents(components [][]byte) []byte {
	size := 0
	for _, comp := range components {
		size += 2 + len(comp)
	}
	key := make([]byte, 0, size)
	for _, comp := range components {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(comp)))
		key = append(key, lenBuf[:]...)
		key = append(key, comp...)
	}
	return key
}

func encodeComponent(col catalog.Column, value interface{}) ([]byte, error) {
	switch col.Type {
	case catalog.ColumnTypeInt:
		switch v := value.(type) {
		case int32:
			return encodeInt64(int64(v)), nil
		case int:
			return encodeInt64(int64(v)), nil
		default:
			return nil, fmt.Errorf("index: expected INT value for column %s", col.Name)
		}
	case catalog.ColumnTypeBigInt:
		switch v := value.(type) {
		case int64:
			return encodeInt64(v), nil
		case int:
			return encodeInt64(int64(v)), nil
		default:
			return nil, fmt.Errorf("index: expected BIGINT value for column %s", col.Name)
		}
	case catalog.ColumnTypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("index: expected BOOLEAN value for column %s", col.Name)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case catalog.ColumnTypeVarChar:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("index: expected VARCHAR value for column %s", col.Name)
		}
		return []byte(str), nil
	case catalog.ColumnTypeDate:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("index: expected DATE value for column %s", col.Name)
		}
		days := t.UTC().Truncate(24 * time.Hour).Unix() / 86400
		return encodeInt64(days), nil
	case catalog.ColumnTypeTimestamp:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("index: expected TIMESTAMP value for column %s", col.Name)
		}
		return encodeInt64(t.UTC().UnixNano()), nil
	case catalog.ColumnTypeDecimal:
		decValue, ok := value.(decimal.Decimal)
		if !ok {
			return nil, fmt.Errorf("index: expected DECIMAL value for column %s", col.Name)
		}
		intVal, err := decimalToScaledInt(decValue, col.Scale)
		if err != nil {
			return nil, err
		}
		return encodeInt64(intVal), nil
	default:
		return nil, fmt.Errorf("index: unsupported index column type %d", col.Type)
	}
}

// encodeInt64 flips the sign bit and writes big-endian so that signed
// integer order matches unsigned byte-wise comparison order.
func encodeInt64(v int64) []byte {
	var buf [8]byte
	u := uint64(v) ^ (uint64(1) << 63)
	binary.BigEndian.PutUint64(buf[:], u)
	return buf[:]
}

func decimalToScaledInt(dec decimal.Decimal, scale int) (int64, error) {
	shifted := dec.Shift(int32(scale))
	if shifted.Exponent() != 0 {
		return 0, fmt.Errorf("index: decimal scaling mismatch")
	}
	coeff := new(big.Int).Abs(shifted.Coefficient())
	if coeff.BitLen() > 63 {
		return 0, fmt.Errorf("index: DECIMAL value exceeds index encoding range")
	}
	v := coeff.Int64()
	if shifted.Sign() < 0 {
		v = -v
	}
	return v, nil
}
