package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/gordonklaus/portaudio"
	"github.com/metalblueberry/bard-tuner/pkg/source"
)

func main() {

	err := portaudio.Initialize()
	if err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	in, err := portaudio.DefaultInputDevice()
	if err != nil {
		log.Printf("no default input device: %v", err)
	}

	devices, err := source.InputDevices()
	if err != nil {
		log.Fatal(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tHOST API\tCHANNELS\tRATE")

	for _, d := range devices {
		mark := ""

		if in != nil && d.Name == in.Name && d.HostApi == in.HostApi {
			mark = "*"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\n", mark, d.Name, d.HostApi.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}

	w.Flush()
}
