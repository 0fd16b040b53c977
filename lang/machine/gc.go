package machine

import "github.com/orus-lang/orus/lang/value"

// Heap objects form a singly-linked allocation list threaded through
// value.Object's Header.next (spec §3 "heap object... common header
// {kind, marked, next}"), exactly as the teacher's comment on Header
// describes. A mark-and-sweep pass walks the roots (globals table and
// operand stack), marks everything reachable, then sweeps the allocation
// list freeing anything left unmarked.
const gcGrowthFactor = 2

func (m *Machine) initGC() {
	m.nextGC = 1 << 20 // 1 MiB before the first collection
}

// track registers a freshly allocated heap object with the collector and
// triggers a collection if the heap has grown past its threshold.
func (m *Machine) track(obj value.Object) value.Object {
	obj.SetNext(m.objects)
	m.objects = obj
	m.bytesAllocated += obj.Size()
	if m.bytesAllocated > m.nextGC {
		m.collectGarbage()
	}
	return obj
}

func (m *Machine) collectGarbage() {
	m.markRoots()
	m.sweep()
	m.nextGC = m.bytesAllocated * gcGrowthFactor
	if m.nextGC < 1<<20 {
		m.nextGC = 1 << 20
	}
}

func (m *Machine) markRoots() {
	for _, v := range m.globals {
		m.markValue(v)
	}
	for _, v := range m.stack {
		m.markValue(v)
	}
	for _, tf := range m.tryStack {
		_ = tf // try frames hold no Values directly, only indices/offsets
	}
}

func (m *Machine) markValue(v value.Value) {
	obj := v.Obj()
	if obj == nil || obj.Marked() {
		return
	}
	obj.SetMarked(true)
	switch o := obj.(type) {
	case *value.ArrayObj:
		for _, e := range o.Elems {
			m.markValue(e)
		}
	case *value.StructObj:
		for _, f := range o.Fields {
			m.markValue(f)
		}
	}
}

func (m *Machine) sweep() {
	var prev value.Object
	obj := m.objects
	for obj != nil {
		if obj.Marked() {
			obj.SetMarked(false)
			prev = obj
			obj = obj.Next()
			continue
		}
		unreached := obj
		obj = obj.Next()
		if prev != nil {
			prev.SetNext(obj)
		} else {
			m.objects = obj
		}
		m.bytesAllocated -= unreached.Size()
	}
}

func (m *Machine) newString(s string) *value.StringObj {
	obj := value.NewString(s)
	m.track(obj)
	return obj
}

func (m *Machine) newArray(elems []value.Value) *value.ArrayObj {
	obj := value.NewArray(elems)
	m.track(obj)
	return obj
}

func (m *Machine) newError(kind, msg, file string, line, col int) *value.ErrorObj {
	obj := value.NewError(kind, msg, file, line, col)
	m.track(obj)
	return obj
}

func (m *Machine) newStruct(typeName string, fields []value.Value) *value.StructObj {
	obj := value.NewStruct(typeName, fields)
	m.track(obj)
	return obj
}
