package index

import "encoding/binary"

// relationNameSize is the fixed, non-terminated width of the meta page's
// relation-name field.
const relationNameSize = 20

const (
	metaRelationNameOff = 0
	metaAttrOffsetOff   = metaRelationNameOff + relationNameSize
	metaAttrTypeOff     = metaAttrOffsetOff + 4
	metaRootPageNoOff   = metaAttrTypeOff + 4
)

// MetaPage is the index file's page 1: relation identity, the indexed
// attribute's byte offset and type, and the current root page number.
type MetaPage struct {
	RelationName [relationNameSize]byte
	AttrOffset   int32
	AttrType     AttrType
	RootPageNo   PageId
}

func decodeMetaPage(buf []byte) MetaPage {
	var m MetaPage
	copy(m.RelationName[:], buf[metaRelationNameOff:metaRelationNameOff+relationNameSize])
	m.AttrOffset = int32(binary.LittleEndian.Uint32(buf[metaAttrOffsetOff:]))
	m.AttrType = AttrType(binary.LittleEndian.Uint32(buf[metaAttrTypeOff:]))
	m.RootPageNo = binary.LittleEndian.Uint32(buf[metaRootPageNoOff:])
	return m
}

func encodeMetaPage(buf []byte, m MetaPage) {
	clear(buf[:relationNameSize])
	copy(buf[metaRelationNameOff:], m.RelationName[:])
	binary.LittleEndian.PutUint32(buf[metaAttrOffsetOff:], uint32(m.AttrOffset))
	binary.LittleEndian.PutUint32(buf[metaAttrTypeOff:], uint32(m.AttrType))
	binary.LittleEndian.PutUint32(buf[metaRootPageNoOff:], m.RootPageNo)
}

// relationNameField truncates or zero-pads name into a fixed 20-byte
// field. Callers must reject names longer than relationNameSize before
// calling this (ErrRelationNameTooLong); it does not itself enforce that.
func relationNameField(name string) [relationNameSize]byte {
	var out [relationNameSize]byte
	copy(out[:], name)
	return out
}
