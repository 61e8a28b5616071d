package cli

import (
	"context"
	"fmt"
	"io"
)

// Version is the bytenode release.
const Version = "0.4.0"

const usage = `
    Usage: bytenode [option] [ FILE... | - ] [arguments]

    Options:
      -h, --help                        show help information.
      -v, --version                     show bytenode and runtime versions.

          --use     [ EXECUTABLE ]      run with this runtime instead of node.
                                        Electron and NW.js executables can be used.

      -c, --compile [ FILE... | - ]     compile stdin, a file, or a list of files.
      -n, --no-module                   compile without module wrapping.
          --output  [ PATH ]            write the artifact to PATH (a directory
                                        when several files are compiled).
          --filename [ NAME ]           source name used when compiling stdin.

      -l, --loader  [ FILE | PATTERN ]  create a loader file next to each artifact;
                                        '%' in PATTERN is replaced by the source name.
                                        defaults to %.loader.js

    Examples:

    $ bytenode -c script.js             compile script.js to script.jsc.
    $ bytenode -c src/*.js              compile every .js file in src/.
    $ bytenode -c ./*.js -l %.load.js   also write name.load.js loaders.
    $ bytenode script.jsc [arguments]   run script.jsc with arguments.
    $ bytenode                          open a REPL where .jsc files can be required.

    $ echo 'console.log("Hello");' | bytenode --compile - > hello.jsc
                                        compile stdin and save to hello.jsc.

    $ bytenode -c main.js --use ./node_modules/electron/dist/electron
                                        compile main.js with electron.

    Configuration is read from the nearest bytenode.toml, or the file named
    by BYTENODE_CONFIG.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func (r *Runner) printVersion(ctx context.Context) {
	fmt.Fprintf(r.Stdout, "Bytenode %s | Node %s\n", Version, r.Compiler.RuntimeVersion(ctx))
}
