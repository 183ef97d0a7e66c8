package rabbitmq

const prefetch = 10

// QueueConfig — очередь и ключ маршрутизации, по которому она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

const (
	// MailExchange — exchange для исходящих писем.
	MailExchange = "mail"
	// MailRoutingKey — ключ, с которым API публикует письма.
	MailRoutingKey = "send"
	// MailQueue — очередь, которую читает mail-sender.
	MailQueue = "mail.outgoing"
)

// GetMailQueues возвращает очереди почтового конвейера.
func GetMailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: MailQueue, RoutingKey: MailRoutingKey},
	}
}
