package manage

// Account status values. A disabled account keeps its rows but cannot log in.
const (
	StatusEnabled  = 0
	StatusDisabled = 1
)

// User is a system account row.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Nickname       string `json:"nickname"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Gender         int    `json:"gender"`
	Avatar         string `json:"avatar,omitempty"`
	PasswordDigest string `json:"-"`
	Status         int    `json:"status"`
	Remark         string `json:"remark"`
	Created        int64  `json:"created"`
	Updated        *int64 `json:"updated,omitempty"`
}

// Role groups authorities for assignment to users.
type Role struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  int    `json:"status"`
	Remark  string `json:"remark"`
	Created int64  `json:"created"`
	Updated *int64 `json:"updated,omitempty"`
}

// Page is a pagination envelope shared by the list endpoints.
type Page[T any] struct {
	Total   int64 `json:"total"`
	Current int   `json:"current"`
	Size    int   `json:"size"`
	Pages   int64 `json:"pages"`
	Records []T   `json:"records"`
}

// NewPage builds a page envelope, computing the page count from the total.
func NewPage[T any](total int64, current, size int, records []T) *Page[T] {
	pages := int64(0)
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	if records == nil {
		records = []T{}
	}
	return &Page[T]{
		Total:   total,
		Current: current,
		Size:    size,
		Pages:   pages,
		Records: records,
	}
}
