package entity

// NotificationField é um par título/valor exibido na mensagem.
type NotificationField struct {
	Title string
	Value string
	Short bool
}

// Notification é a mensagem já formatada, independente do canal de entrega.
type Notification struct {
	Title    string
	Text     string
	Fallback string
	Color    string
	Fields   []NotificationField
	Footer   string
}
