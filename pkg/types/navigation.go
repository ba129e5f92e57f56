package types

type NavigationItem struct {
	Name        string           `json:"name"`
	Href        string           `json:"href"`
	AuthzObject string           `json:"-"`
	AuthzAction string           `json:"-"`
	Children    []NavigationItem `json:"children,omitempty"`
}

// FilterNavigation keeps the items allow accepts. A parent without its own
// object survives only when at least one child does.
func FilterNavigation(items []NavigationItem, allow func(object, action string) bool) []NavigationItem {
	out := make([]NavigationItem, 0, len(items))
	for _, item := range items {
		children := FilterNavigation(item.Children, allow)
		if item.AuthzObject == "" {
			if len(item.Children) > 0 && len(children) == 0 {
				continue
			}
		} else if !allow(item.AuthzObject, item.AuthzAction) {
			continue
		}
		item.Children = children
		if len(item.Children) == 0 {
			item.Children = nil
		}
		out = append(out, item)
	}
	return out
}
