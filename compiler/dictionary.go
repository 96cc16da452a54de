package compiler

// EntryType is the tagged-variant classification byte written into every
// dictionary entry: it determines how a later reference to the name is
// compiled.
type EntryType byte

const (
	TypeVar EntryType = iota
	TypeConst
	TypeOp
	TypeObj
	TypeImm
)

func (t EntryType) String() string {
	switch t {
	case TypeVar:
		return "VAR"
	case TypeConst:
		return "CONST"
	case TypeOp:
		return "OP"
	case TypeObj:
		return "OBJ"
	case TypeImm:
		return "IMM"
	default:
		return "?"
	}
}

// entry mirrors one CREATEd dictionary entry: enough to resolve a name to
// its payload address and type without re-reading the target RAM, and to
// walk hash chains for diagnostics and tests.
type entry struct {
	Name       string
	Type       EntryType
	Start      uint16 // address of the link field
	PayloadPos uint16 // address of the byte right after the type byte
	Bucket     uint32
}

// dictionary is the compiler's host-side mirror of the target-RAM
// dictionary: name_set (name -> entry) and link_set (start address ->
// name), kept in lockstep with every CREATE so lookups never need to
// walk the compiled hash chains byte-by-byte.
type dictionary struct {
	byName map[string]*entry
	byAddr map[uint16]*entry
}

func newDictionary() *dictionary {
	return &dictionary{
		byName: make(map[string]*entry),
		byAddr: make(map[uint16]*entry),
	}
}

func (d *dictionary) add(e *entry) {
	d.byName[e.Name] = e
	d.byAddr[e.Start] = e
}

func (d *dictionary) lookup(name string) (*entry, bool) {
	e, ok := d.byName[name]
	return e, ok
}
