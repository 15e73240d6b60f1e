package calculator

import "sort"

// replayOrder returns the bound entities sorted for replay into a fresh
// backend. Container entities report their children live, so after a
// structural edit an assembly or model can sit earlier in first-bind order
// than a child bound by that edit. Replay by structural depth keeps every
// child bound before the entity referencing it; within a depth the
// first-bind order is preserved.
func replayOrder(bound []Entity) []Entity {
	ordered := make([]Entity, len(bound))
	copy(ordered, bound)
	sort.SliceStable(ordered, func(a, b int) bool {
		return bindDepth(ordered[a].Kind()) < bindDepth(ordered[b].Kind())
	})
	return ordered
}

func bindDepth(k Kind) int {
	switch k {
	case KindMaterial:
		return 0
	case KindLayer:
		return 1
	case KindMultiLayer, KindRepeatingMultiLayer:
		return 2
	default:
		return 3
	}
}

// bindInto registers an entity with a backend and records its container.
// Structural preconditions (parents and referenced children already bound)
// are checked before the first backend call so a failed bind never leaves a
// half-linked structure; multi-call binds undo the reversible calls they
// already made before returning an error.
func bindInto(b Backend, containers map[string]*ItemContainer, e Entity) error {
	uid := e.UID()
	if _, ok := containers[uid]; ok {
		return nil
	}
	table := attrTable(e.Kind())

	switch e.Kind() {
	case KindMaterial:
		if err := b.CreateMaterial(uid); err != nil {
			return BackendError{Backend: b.Name(), Call: "create_material", Args: []string{uid}, Err: err}
		}
		c := &ItemContainer{UID: uid, NameMap: table, Getter: b.GetMaterialValue, Setter: b.UpdateMaterial}
		if err := pushParameters(b, c, e); err != nil {
			return err
		}
		containers[uid] = c

	case KindLayer:
		le, ok := e.(LayerEntity)
		if !ok {
			return UnboundParentError{UID: uid, Requires: "a material reference"}
		}
		matUID := le.MaterialUID()
		if _, ok := containers[matUID]; !ok {
			return UnboundParentError{UID: uid, Requires: "material " + matUID}
		}
		if err := b.CreateLayer(uid); err != nil {
			return BackendError{Backend: b.Name(), Call: "create_layer", Args: []string{uid}, Err: err}
		}
		if err := b.AssignMaterialToLayer(matUID, uid); err != nil {
			return BackendError{Backend: b.Name(), Call: "assign_material_to_layer", Args: []string{matUID, uid}, Err: err}
		}
		c := &ItemContainer{UID: uid, NameMap: table, Getter: b.GetLayerValue, Setter: b.UpdateLayer}
		if err := pushParameters(b, c, e); err != nil {
			return err
		}
		containers[uid] = c

	case KindMultiLayer, KindRepeatingMultiLayer:
		ae, ok := e.(AssemblyEntity)
		if !ok {
			return UnboundParentError{UID: uid, Requires: "layer references"}
		}
		layerUIDs := ae.LayerUIDs()
		for _, lu := range layerUIDs {
			if _, ok := containers[lu]; !ok {
				return UnboundParentError{UID: uid, Requires: "layer " + lu}
			}
		}
		if err := b.CreateItem(uid); err != nil {
			return BackendError{Backend: b.Name(), Call: "create_item", Args: []string{uid}, Err: err}
		}
		for n, lu := range layerUIDs {
			if err := b.AddLayerToItem(lu, uid); err != nil {
				unwindLayers(b, uid, layerUIDs[:n])
				return BackendError{Backend: b.Name(), Call: "add_layer_to_item", Args: []string{lu, uid}, Err: err}
			}
		}
		c := &ItemContainer{UID: uid, NameMap: table, Getter: b.GetItemValue, Setter: b.UpdateItem}
		if err := pushParameters(b, c, e); err != nil {
			unwindLayers(b, uid, layerUIDs)
			return err
		}
		containers[uid] = c

	case KindModel:
		me, ok := e.(ModelEntity)
		if !ok {
			return UnboundParentError{UID: uid, Requires: "assembly references"}
		}
		itemUIDs := me.AssemblyUIDs()
		for _, iu := range itemUIDs {
			if _, ok := containers[iu]; !ok {
				return UnboundParentError{UID: uid, Requires: "assembly " + iu}
			}
		}
		if err := b.CreateModel(uid); err != nil {
			return BackendError{Backend: b.Name(), Call: "create_model", Args: []string{uid}, Err: err}
		}
		for n, iu := range itemUIDs {
			if err := b.AddItem(iu); err != nil {
				unwindItems(b, itemUIDs[:n])
				return BackendError{Backend: b.Name(), Call: "add_item", Args: []string{iu}, Err: err}
			}
		}
		c := &ItemContainer{UID: uid, NameMap: table, Getter: b.GetModelValue, Setter: b.UpdateModel}
		if err := pushParameters(b, c, e); err != nil {
			unwindItems(b, itemUIDs)
			return err
		}
		containers[uid] = c

	default:
		return UnboundParentError{UID: uid, Requires: "a known entity kind"}
	}
	return nil
}

// pushParameters writes every bound parameter's current value into the
// backend so the abstract tree remains the source of truth across binds and
// backend switches.
func pushParameters(b Backend, c *ItemContainer, e Entity) error {
	for _, bp := range e.BoundParameters() {
		backendAttr, ok := c.NameMap[bp.Attr]
		if !ok {
			return UnknownAttributeError{UID: c.UID, Attr: bp.Attr}
		}
		if err := c.Setter(c.UID, backendAttr, bp.Param.Value()); err != nil {
			return BackendError{Backend: b.Name(), Call: "update", Args: []string{c.UID, backendAttr}, Err: err}
		}
	}
	return nil
}

func unwindLayers(b Backend, itemUID string, layerUIDs []string) {
	for n := len(layerUIDs) - 1; n >= 0; n-- {
		_ = b.RemoveLayerFromItem(layerUIDs[n], itemUID)
	}
}

func unwindItems(b Backend, itemUIDs []string) {
	for n := len(itemUIDs) - 1; n >= 0; n-- {
		_ = b.RemoveItem(itemUIDs[n])
	}
}
