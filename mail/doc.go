// Package mail delivers activation codes. [SMTPMailer] sends the rendered
// HTML mail directly, [KafkaMailer] hands an activation event to a mail
// worker over Kafka, and [LogMailer] only logs, for local development.
package mail
