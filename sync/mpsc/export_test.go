package mpsc

// SendWaiters returns the number of producers parked on rx's channel.
func SendWaiters[T any](rx *SyncReceiver[T]) int {
	return rx.shared.sendWait.Len()
}
