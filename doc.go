/*
go-facetrack tracks faces through video.  A face detector is run
periodically and single object correlation trackers follow every face in
between, giving each face a persistent track ID for as long as it stays in
view.

The tracking core is in the tracker package, the Pipeline in this package
ties it to video decoding, detection, reporting and rendering.

See example code and usage in the examples subdirectory.
*/
package facetrack
