package compiler

// create begins a new dictionary entry for name: computes its hash
// bucket, rewrites the bucket head to point at the new entry, and emits
// the link/name-length/name fields. The caller emits the type byte and
// payload immediately afterward. Returns the entry's start address (the
// address of its link field).
func (c *Compiler) create(name string) uint16 {
	bucket := bucketHash(name)
	bucketAddr := uint16(offHashArray) + bucketOffset(bucket)

	oldHead, _ := c.VM.LoadHalf(bucketAddr)

	start := c.DP
	linkFieldAddr := start

	// The new entry becomes the bucket head: its relative offset from the
	// bucket cell is (start - bucketAddr).
	c.patchU16(bucketAddr, start-bucketAddr)

	// The new entry's link field points at the previous head, rebased
	// relative to this entry's own link cell: 0 if the bucket was empty.
	var prevRel uint16
	if oldHead != 0 {
		prevEntryAddr := bucketAddr + uint16(oldHead)
		prevRel = prevEntryAddr - linkFieldAddr
	}
	c.emitU16(prevRel)

	c.emitByte(byte(len(name)))
	for i := 0; i < len(name); i++ {
		c.emitByte(name[i])
	}

	return start
}

// finishEntry records a freshly-CREATEd entry (after its type byte and
// payload have been emitted) in the compiler's dictionary mirrors and
// exported symbol table.
func (c *Compiler) finishEntry(name string, typ EntryType, start uint16) *entry {
	e := &entry{
		Name:       name,
		Type:       typ,
		Start:      start,
		PayloadPos: start + 2 + 1 + uint16(len(name)) + 1,
		Bucket:     bucketHash(name),
	}
	c.dict.add(e)
	c.lastWord = e
	c.Symbols[name] = start
	return e
}
