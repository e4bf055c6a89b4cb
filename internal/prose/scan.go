package prose

// Scan runs the detector battery over text. Spans and ops are byte offsets
// into text. Flags appear in battery order and only for detectors that matched.
func Scan(text string) ScanResult {
	result := ScanResult{
		Flags:        []Flag{},
		SuggestedOps: []EditOp{},
	}

	for _, d := range battery {
		hits := d.detect(text)
		if len(hits) == 0 {
			continue
		}

		info := d.info()
		flag := Flag{
			Kind:     info.kind,
			Severity: info.severity,
			Detector: info.name,
			Message:  info.message,
			Spans:    make([]Span, 0, len(hits)),
		}
		for _, h := range hits {
			flag.Spans = append(flag.Spans, newSpan(text, h.start, h.end))
			if h.op != nil {
				result.SuggestedOps = append(result.SuggestedOps, *h.op)
			}
		}
		result.Flags = append(result.Flags, flag)
		result.Counts.add(info.kind, len(hits))
	}

	return result
}

// DetectorNames lists the battery in run order.
func DetectorNames() []string {
	names := make([]string, 0, len(battery))
	for _, d := range battery {
		names = append(names, d.info().name)
	}
	return names
}
