package tasks

// Variant selects how a notification is presented.
type Variant string

const (
	VariantNormal      Variant = "normal"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient, user-facing outcome report.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

type discard struct{}

func (discard) Notify(Notification) {}

func success(title, desc string) Notification {
	return Notification{Title: title, Description: desc, Variant: VariantNormal}
}

func failure(title string, err error) Notification {
	return Notification{Title: title, Description: err.Error(), Variant: VariantDestructive}
}
