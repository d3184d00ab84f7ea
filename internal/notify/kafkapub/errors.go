package kafkapub

import "errors"

var (
	// ErrPublisherClosed is returned when publishing after Close
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrNoBrokers is returned when no brokers are configured
	ErrNoBrokers = errors.New("no kafka brokers configured")

	// ErrNoTopic is returned when topic is empty
	ErrNoTopic = errors.New("kafka topic cannot be empty")
)
