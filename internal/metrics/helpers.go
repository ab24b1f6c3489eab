package metrics

// Nil-safe increment helpers so pipeline code can record metrics
// without caring whether Init ran (unit tests never call Init).

func IncClassification(method string) {
	if Collectors.ClassificationsTotal != nil {
		Collectors.ClassificationsTotal.WithLabelValues(method).Inc()
	}
}

func IncGPTCall() {
	if Collectors.GPTCalls != nil {
		Collectors.GPTCalls.Inc()
	}
}

func IncGPTCacheHit() {
	if Collectors.GPTCacheHits != nil {
		Collectors.GPTCacheHits.Inc()
	}
}

func IncGPTCacheMiss() {
	if Collectors.GPTCacheMisses != nil {
		Collectors.GPTCacheMisses.Inc()
	}
}

func IncYouTubeRequest() {
	if Collectors.YouTubeRequests != nil {
		Collectors.YouTubeRequests.Inc()
	}
}

func ObserveStage(stage string, seconds float64) {
	if Collectors.StageDuration != nil {
		Collectors.StageDuration.WithLabelValues(stage).Observe(seconds)
	}
}
