package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Faultbox/jointmorph/internal/config"
	"github.com/Faultbox/jointmorph/internal/watch"
	"github.com/Faultbox/jointmorph/pkg/formats"
)

func cmdWatch(cfg *config.Config, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = cfg.Data.BundlePaths
	}

	w, err := watch.New(paths...)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Watching %d path(s), Ctrl+C to stop\n", len(paths))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = w.Reload(ctx, cfg.Data.GLTFFPS, func(path string, b *formats.Bundle) {
		fmt.Printf("%s: model %s, %d joints, %d clips\n", path, b.Model.Name, len(b.Model.Joints), len(b.Clips))
		for _, c := range b.Clips {
			h := c.Header()
			fmt.Printf("  %-16s %-10s %8.2f frames\n", h.Name, formats.KindOf(c), h.Duration)
		}
	})
	return ignoreCancel(err)
}
