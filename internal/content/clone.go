package content

// CloneWithFreshIDs deep-copies a document and assigns a new id to every block, nested ones
// included, so two copies of the same source never share block ids.
func CloneWithFreshIDs(doc Document) Document {
	out := doc.Clone()
	out.Blocks = reassign(out.Blocks)
	return out
}

func reassign(blocks []Block) []Block {
	for i := range blocks {
		blocks[i].ID = NewBlockID(blocks[i].Type)
		for k, v := range blocks[i].Props {
			blocks[i].Props[k] = reassignValue(v)
		}
	}
	return blocks
}

func reassignValue(v Value) Value {
	switch v.kind {
	case KindBlocks:
		v.blocks = reassign(v.blocks)
	case KindList:
		for _, it := range v.items {
			for k, iv := range it {
				it[k] = reassignValue(iv)
			}
		}
	}
	return v
}
