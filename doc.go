// Package pagepdf paginates rendered HTML content into fixed-size PDF pages.
//
// The content is laid out once by headless Chrome at a reference width,
// captured as a bitmap and tiled onto physical pages. Blocks marked atomic
// are pushed past page boundaries before capture so that no exercise,
// figure or equation is cut in half.
//
// # Quick Start
//
//	conv, err := pagepdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, pagepdf.Input{
//	    Markdown: "# Worksheet\n\nSolve $x^2 = 4$.",
//	})
//	if err != nil {
//	    log.Fatal(pagepdf.UserMessage(err))
//	}
//	os.WriteFile(result.Filename, result.PDF, 0o644)
//
// # Layouts
//
// LayoutFlow (default) captures the target element as one tall image and
// repeats it on every page, shifted up by one content height and clipped to
// the margins. Elements matching Input.BlockSelector never straddle a page
// boundary unless they are taller than a page.
//
// LayoutUnits captures every element matching Input.UnitSelector on its own
// page, fitted into the content box. Elements matching Input.Suppress stay
// in the layout but are hidden in the output.
//
// # Geometry
//
// A page of W x H points with margin m maps onto the content at reference
// width R pixels with
//
//	scale = (W - 2m) / R
//	logical page height = (H - 2m) / scale
//
// # Strategies
//
// StrategyLocal (default) renders with go-rod. StrategyRemote posts a
// self-contained snapshot of the target to an HTTP print service:
//
//	conv, err := pagepdf.NewConverter(
//	    pagepdf.WithStrategy(pagepdf.StrategyRemote),
//	    pagepdf.WithRemoteEndpoint("https://print.example.com/pdf"),
//	)
//
// # Errors
//
// Every job error wraps one of the sentinels in errors.go. UserMessage turns
// any of them into the single line shown to end users. A PDF is only
// returned after it has been parsed back and its page count checked.
//
// # Parallelism
//
// A Converter owns one browser and runs one job at a time. ConverterPool
// hands out independent converters for parallel jobs.
package pagepdf
