package process

// CopyChannels copies each input channel to the matching output channel.
func CopyChannels[S float32 | float64](in, out [][]S) {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	for ch := 0; ch < n; ch++ {
		copy(out[ch], in[ch])
	}
}

func clearChannels[S float32 | float64](out [][]S) {
	for ch := range out {
		clear(out[ch])
	}
}

// ProcessStereo calls fn for up to 2 channels.
func ProcessStereo[S float32 | float64](in, out [][]S, fn func(ch int, input, output []S)) {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	if n > 2 {
		n = 2
	}
	for ch := 0; ch < n; ch++ {
		fn(ch, in[ch], out[ch])
	}
}
