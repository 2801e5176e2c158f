package model

// Index resolves VLAN and LACP group references in one generation pass.
type Index struct {
	vlans  map[int]*Vlan
	groups map[string]*LacpGroup
}

// NewIndex builds lookups keyed by Vlan.VlanID and LacpGroup.ID. When two
// VLANs share an ID the first one wins, the same result a linear search gives.
func NewIndex(vlans []Vlan, groups []LacpGroup) *Index {
	x := &Index{
		vlans:  make(map[int]*Vlan, len(vlans)),
		groups: make(map[string]*LacpGroup, len(groups)),
	}
	for i := range vlans {
		if _, ok := x.vlans[vlans[i].VlanID]; !ok {
			x.vlans[vlans[i].VlanID] = &vlans[i]
		}
	}
	for i := range groups {
		if _, ok := x.groups[groups[i].ID]; !ok {
			x.groups[groups[i].ID] = &groups[i]
		}
	}
	return x
}

// Vlan returns the VLAN with the given 802.1Q ID
func (x *Index) Vlan(vlanID int) (*Vlan, bool) {
	v, ok := x.vlans[vlanID]
	return v, ok
}

// LacpGroup returns the group with the given record ID
func (x *Index) LacpGroup(id string) (*LacpGroup, bool) {
	g, ok := x.groups[id]
	return g, ok
}

// GroupOf returns the group an interface belongs to, if it resolves
func (x *Index) GroupOf(i *Interface) (*LacpGroup, bool) {
	if !i.IsLacpMember() {
		return nil, false
	}
	return x.LacpGroup(*i.LacpGroupID)
}
