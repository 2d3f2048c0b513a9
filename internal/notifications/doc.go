// Package notifications delivers push notifications about job lifecycle
// events via ntfy. Delivery is best effort; failures never stall the
// pipeline.
package notifications
