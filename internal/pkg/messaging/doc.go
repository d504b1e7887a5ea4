// Package messaging publishes domain events to a message broker and, for
// brokers that support it, consumes them back.
//
// Every driver implements Broker. Google Pub/Sub additionally implements
// Consumer; the other drivers are publish-only.
package messaging
