package workflow

type NoticeKind string

const (
	NoticeValidation NoticeKind = "validation"
	NoticeBackend    NoticeKind = "backend_error"
	NoticeSuccess    NoticeKind = "success"
	NoticeInfo       NoticeKind = "info"
)

// Notice - сообщение пользователю (toast).
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Collector накапливает уведомления, например для ответа HTTP.
type Collector struct {
	Notices []Notice
}

func (c *Collector) Notify(n Notice) {
	c.Notices = append(c.Notices, n)
}
