// Package conf interprets block-structured configuration files.
//
// A configuration file starts with a header naming the program and the
// version it was written for, followed by lines grouped into blocks:
//
//	<myapp-1.2.0>
//	# comment
//	%put(root /srv/www)
//	begin site
//	    name example.org
//	    docroot %get(root)/example
//	end
//	%include extra.conf
//
// Each block names a context registered with [Engine.RegisterContext]. Every
// body line is expanded (see [Engine.Expand]) and passed to the context's
// [Handler], which threads its own state from call to call:
//
//	e := conf.New(conf.WithProgram("myapp", "1.2.0"))
//	defer e.Close()
//
//	e.RegisterContext("site", conf.HandlerFunc(
//		func(ctx context.Context, ev conf.Event, line string, state any) any {
//			switch ev {
//			case conf.EventBegin:
//				return map[string]string{}
//			case conf.EventLine:
//				m := state.(map[string]string)
//				m[conf.Word(1, line)] = conf.PWord(2, line)
//			case conf.EventEnd:
//				register(state.(map[string]string))
//			}
//			return state
//		}))
//
//	dir, err := e.Parse(ctx, "myapp.conf", "", "/etc/myapp:/usr/local/etc")
//
// # Directives
//
// Lines starting with %include name open another file; %preproc command
// replaces the rest of the current file with the output of command run on
// the whole file. Any other line starting with % is expanded and discarded,
// which is useful for calls such as %put(name value).
//
// # Builtins
//
// The builtins appname, version, exec, get, put, dirscan, random, and eval
// are always registered. Programs may add their own with
// [Engine.RegisterBuiltin].
//
// # Diagnostics
//
// Problems found in the input are reported to a [Reporter] as a
// [Diagnostic] and parsing continues. Use a [Collector] to inspect them
// afterwards.
package conf
