package libio

import (
	"encoding/binary"
	"io"
)

// BinaryReader reads little- or big-endian values with a sticky error,
// so a sequence of reads only needs one check at the end. Index tracks
// the byte offset for error reporting.
type BinaryReader struct {
	Order     binary.ByteOrder
	Src       io.Reader
	Index     int
	LastIndex int
	Err       error
}

func (br *BinaryReader) Read(p []byte) (n int, err error) {
	return br.Src.Read(p)
}

func (br *BinaryReader) ReadUInt16(i *uint16) (ok bool) {
	if br.Err != nil {
		return false
	}
	var buf [2]byte
	if _, err := io.ReadFull(br.Src, buf[:]); err != nil {
		br.Err = err
		return false
	}
	*i = br.Order.Uint16(buf[:])
	br.LastIndex = br.Index
	br.Index += 2
	return true
}

func (br *BinaryReader) ReadUInt32(i *uint32) (ok bool) {
	if br.Err != nil {
		return false
	}
	var buf [4]byte
	if _, err := io.ReadFull(br.Src, buf[:]); err != nil {
		br.Err = err
		return false
	}
	*i = br.Order.Uint32(buf[:])
	br.LastIndex = br.Index
	br.Index += 4
	return true
}

// ReadRef reads into any fixed-size value or slice of fixed-size
// values, as defined by encoding/binary.
func (br *BinaryReader) ReadRef(data any) (ok bool) {
	if br.Err != nil {
		return false
	}
	err := binary.Read(br.Src, br.Order, data)
	br.Err = err
	br.LastIndex = br.Index
	if err == nil {
		br.Index += binary.Size(data)
	}
	return err == nil
}

// BinaryWriter is the writing counterpart of BinaryReader.
type BinaryWriter struct {
	Order binary.ByteOrder
	Dst   io.Writer
	Err   error
}

func (bw *BinaryWriter) Write(p []byte) (n int, err error) {
	return bw.Dst.Write(p)
}

func (bw *BinaryWriter) WriteBytes(p []byte) (ok bool) {
	if bw.Err != nil {
		return false
	}
	if _, err := bw.Dst.Write(p); err != nil {
		bw.Err = err
		return false
	}
	return true
}

func (bw *BinaryWriter) WriteUInt16(i uint16) (ok bool) {
	var buf [2]byte
	bw.Order.PutUint16(buf[:], i)
	return bw.WriteBytes(buf[:])
}

func (bw *BinaryWriter) WriteUInt32(i uint32) (ok bool) {
	var buf [4]byte
	bw.Order.PutUint32(buf[:], i)
	return bw.WriteBytes(buf[:])
}

func (bw *BinaryWriter) WriteRef(data any) (ok bool) {
	if bw.Err != nil {
		return false
	}
	err := binary.Write(bw.Dst, bw.Order, data)
	bw.Err = err
	return err == nil
}
