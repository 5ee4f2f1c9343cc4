// Package acquire hands out a controllable browser, whatever the host has.
//
// Acquire first tries the system browser: launch it, read its DevTools
// endpoint and connect. If any of that fails the failure is classified,
// cleaned up where needed and the locally cached headless shell is used
// instead, installing it on a cache miss. Only a failure of that second
// path is returned.
//
// The result says which path won. Pass it to Terminate exactly once:
//
//	res, err := acq.Acquire(ctx, acquire.Options{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	defer acquire.Terminate(context.Background(), res)
//
//	err = chromedp.Run(res.Handle().Context(), chromedp.Navigate(url))
package acquire
