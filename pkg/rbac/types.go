package rbac

// Authority is a permission/menu node. Code is the string permission checks
// compare against; ParentID links nodes into a forest for display. Nothing
// in this core guarantees codes are globally unique.
type Authority struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Sort     int    `json:"sort"`
	Code     string `json:"code"`
	Remark   string `json:"remark"`
	Created  int64  `json:"created"`
	Updated  *int64 `json:"updated,omitempty"`
}

// TreeNode is one node of the rebuilt authority forest. Name serializes as
// "label" for the admin UI's tree widgets.
type TreeNode struct {
	ID       int64       `json:"id"`
	Name     string      `json:"label"`
	ParentID *int64      `json:"parent_id"`
	Children []*TreeNode `json:"children"`
	Disabled bool        `json:"disabled"`
}
