package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// declareTopology wires up the namespaced DLX/DLQ plus the main queue and
// its retry queue for one logical queue (§4.4).
//
//	NS.dlx  — durable direct exchange
//	NS.dlq  — durable queue, bound to NS.dlx with routing key NS.dlq
//	Q       — durable queue, dead-letters to NS.dlx/NS.dlq, bound to
//	          NS.dlx with routing key Q so expired retries route back
//	Q.retry — durable queue, message-ttl = max_backoff_seconds*1000,
//	          dead-letters to NS.dlx/Q
func (cr *ConsumerRoutes) declareTopology(ch *amqp.Channel, queue string) (dlxName, dlqName, retryQueue string, err error) {
	dlxName = cr.Namespace + ".dlx"
	dlqName = cr.Namespace + ".dlq"
	retryQueue = buildRetryQueueName(queue)

	if err = ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		return "", "", "", err
	}

	if _, err = ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return "", "", "", err
	}

	if err = ch.QueueBind(dlqName, dlqName, dlxName, false, nil); err != nil {
		return "", "", "", err
	}

	mainArgs := amqp.Table{
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": dlqName,
	}

	if _, err = ch.QueueDeclare(queue, true, false, false, false, mainArgs); err != nil {
		return "", "", "", err
	}

	if err = ch.QueueBind(queue, queue, dlxName, false, nil); err != nil {
		return "", "", "", err
	}

	retryArgs := amqp.Table{
		"x-message-ttl":             int64(cr.MaxBackoff.Milliseconds()),
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": queue,
	}

	if _, err = ch.QueueDeclare(retryQueue, true, false, false, false, retryArgs); err != nil {
		return "", "", "", err
	}

	return dlxName, dlqName, retryQueue, nil
}

func buildRetryQueueName(queue string) string {
	return queue + ".retry"
}
