package vm

import "github.com/n3core/node/pkg/vm/stackitem"

func memcpy(s *Stack) error {
	count, err := popInt(s)
	if err != nil {
		return err
	}
	srcIdx, err := popInt(s)
	if err != nil {
		return err
	}
	src, err := popBytes(s)
	if err != nil {
		return err
	}
	dstIdx, err := popInt(s)
	if err != nil {
		return err
	}
	dst, err := s.Pop()
	if err != nil {
		return err
	}
	buf, ok := dst.(*stackitem.Buffer)
	if !ok {
		return ErrInvalidOpcode
	}
	n := int(count.Int64())
	si := int(srcIdx.Int64())
	di := int(dstIdx.Int64())
	if n < 0 || si < 0 || di < 0 || si+n > len(src) {
		return ErrInvalidOpcode
	}
	for i := 0; i < n; i++ {
		buf.Set(di+i, src[si+i])
	}
	return nil
}

func substr(s *Stack) error {
	count, err := popInt(s)
	if err != nil {
		return err
	}
	index, err := popInt(s)
	if err != nil {
		return err
	}
	b, err := popBytes(s)
	if err != nil {
		return err
	}
	n := int(count.Int64())
	idx := int(index.Int64())
	if n < 0 || idx < 0 || idx+n > len(b) {
		return ErrInvalidOpcode
	}
	s.Push(stackitem.NewByteArray(b[idx : idx+n]))
	return nil
}

func pack(s *Stack, asStruct bool) error {
	n, err := popInt(s)
	if err != nil {
		return err
	}
	count := int(n.Int64())
	items := make([]stackitem.Item, count)
	for i := 0; i < count; i++ {
		it, err := s.Pop()
		if err != nil {
			return err
		}
		items[i] = it
	}
	if asStruct {
		s.Push(stackitem.NewStructItem(items))
	} else {
		s.Push(stackitem.NewArray(items))
	}
	return nil
}

func unpack(s *Stack) error {
	i, err := s.Pop()
	if err != nil {
		return err
	}
	var items []stackitem.Item
	switch v := i.(type) {
	case *stackitem.Array:
		for j := v.Len() - 1; j >= 0; j-- {
			items = append(items, v.At(j))
		}
	case *stackitem.Struct:
		for j := v.Len() - 1; j >= 0; j-- {
			items = append(items, v.At(j))
		}
	default:
		return ErrInvalidOpcode
	}
	for _, it := range items {
		s.Push(it)
	}
	s.Push(stackitem.Make(int64(len(items))))
	return nil
}

func packMap(s *Stack) error {
	n, err := popInt(s)
	if err != nil {
		return err
	}
	count := int(n.Int64())
	m := stackitem.NewMap()
	for i := 0; i < count; i++ {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		k, err := s.Pop()
		if err != nil {
			return err
		}
		if err := m.Set(k, v); err != nil {
			return err
		}
	}
	s.Push(m)
	return nil
}

func pickItem(s *Stack) error {
	key, err := s.Pop()
	if err != nil {
		return err
	}
	i, err := s.Pop()
	if err != nil {
		return err
	}
	switch v := i.(type) {
	case *stackitem.Array:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		idx := n.Int64()
		if idx < 0 || idx >= int64(v.Len()) {
			return ErrInvalidOpcode
		}
		s.Push(v.At(int(idx)))
	case *stackitem.Struct:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		idx := n.Int64()
		if idx < 0 || idx >= int64(v.Len()) {
			return ErrInvalidOpcode
		}
		s.Push(v.At(int(idx)))
	case *stackitem.Map:
		val := v.Get(key)
		if val == nil {
			return ErrInvalidOpcode
		}
		s.Push(val)
	case *stackitem.Buffer:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		b, _ := v.TryBytes()
		idx := n.Int64()
		if idx < 0 || idx >= int64(len(b)) {
			return ErrInvalidOpcode
		}
		s.Push(stackitem.Make(int64(b[idx])))
	case *stackitem.ByteString:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		b, _ := v.TryBytes()
		idx := n.Int64()
		if idx < 0 || idx >= int64(len(b)) {
			return ErrInvalidOpcode
		}
		s.Push(stackitem.Make(int64(b[idx])))
	default:
		return ErrInvalidOpcode
	}
	return nil
}

func setItem(s *Stack) error {
	val, err := s.Pop()
	if err != nil {
		return err
	}
	key, err := s.Pop()
	if err != nil {
		return err
	}
	i, err := s.Pop()
	if err != nil {
		return err
	}
	switch v := i.(type) {
	case *stackitem.Array:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		idx := n.Int64()
		if idx < 0 || idx >= int64(v.Len()) {
			return ErrInvalidOpcode
		}
		old := v.At(int(idx))
		v.SetAt(int(idx), val)
		s.refs.RemoveContainerRef(old)
		s.refs.AddContainerRef(val)
	case *stackitem.Struct:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		idx := n.Int64()
		if idx < 0 || idx >= int64(v.Len()) {
			return ErrInvalidOpcode
		}
		old := v.At(int(idx))
		v.SetAt(int(idx), val)
		s.refs.RemoveContainerRef(old)
		s.refs.AddContainerRef(val)
	case *stackitem.Map:
		existed := v.Has(key)
		var old stackitem.Item
		if existed {
			old = v.Get(key)
		}
		if err := v.Set(key, val); err != nil {
			return err
		}
		if existed {
			s.refs.RemoveContainerRef(old)
		} else {
			s.refs.AddContainerRef(key)
		}
		s.refs.AddContainerRef(val)
	case *stackitem.Buffer:
		n, err := key.TryInteger()
		if err != nil {
			return err
		}
		b, err := val.TryInteger()
		if err != nil {
			return err
		}
		v.Set(int(n.Int64()), byte(b.Int64()))
	default:
		return ErrInvalidOpcode
	}
	return nil
}
