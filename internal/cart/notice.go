package cart

import "fmt"

type NoticeKind string

const (
	NoticeAdded           NoticeKind = "added"
	NoticeQuantityUpdated NoticeKind = "quantity_updated"
	NoticeRemoved         NoticeKind = "removed"
	NoticeCleared         NoticeKind = "cleared"
)

// Notice is the user-facing confirmation of a cart mutation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

func addedNotice(name string, appended bool) Notice {
	if appended {
		return Notice{Kind: NoticeAdded, Message: fmt.Sprintf("%s added to cart", name)}
	}
	return Notice{Kind: NoticeQuantityUpdated, Message: fmt.Sprintf("%s quantity updated", name)}
}

func removedNotice(name string) Notice {
	return Notice{Kind: NoticeRemoved, Message: fmt.Sprintf("%s removed from cart", name)}
}

func quantityNotice(name string, qty int) Notice {
	return Notice{Kind: NoticeQuantityUpdated, Message: fmt.Sprintf("%s quantity set to %d", name, qty)}
}

var clearedNotice = Notice{Kind: NoticeCleared, Message: "Cart cleared"}
